package voice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ongeahq/ongea/core/flow"
	"github.com/ongeahq/ongea/services/voice/atvoice"
	"github.com/ongeahq/ongea/web"

	"github.com/nyaruka/librato"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func init() {
	web.RegisterRoute(http.MethodPost, flow.EntryPath, handleStep(flow.StepEntry))
	web.RegisterRoute(http.MethodPost, flow.LanguagePath, handleStep(flow.StepLanguage))
	web.RegisterRoute(http.MethodPost, flow.ServicePath, handleStep(flow.StepService))
	web.RegisterRoute(http.MethodPost, flow.HungerPath, handleStep(flow.StepHunger))
	web.RegisterRoute(http.MethodPost, flow.WaterPath, handleStep(flow.StepWater))
	web.RegisterRoute(http.MethodPost, flow.EmergencyPath, handleStep(flow.StepEmergency))
	web.RegisterRoute(http.MethodPost, flow.DiagnosticPath, handleStep(flow.StepDiagnostic))
	web.RegisterRoute(http.MethodPost, flow.RecordingPath, handleRecording)

	web.RegisterJSONRoute(http.MethodGet, "/health", handleHealth)
}

// stepForm is what the carrier posts on every digit driven callback, all
// fields are optional
type stepForm struct {
	SessionID    string `form:"sessionId"`
	CallerNumber string `form:"callerNumber"`
	Digits       string `form:"dtmfDigits"`
}

// recordingForm is what the carrier posts when an emergency recording completes
type recordingForm struct {
	SessionID    string `form:"sessionId"`
	CallerNumber string `form:"callerNumber"`
	RecordingURL string `form:"recordingUrl"`
	Duration     string `form:"durationInSeconds"`
}

// handleStep returns a handler which resolves the passed in step against the
// caller's input and writes the resulting actions back to the carrier
func handleStep(step flow.Step) web.Handler {
	return func(ctx context.Context, s *web.Server, r *http.Request, w http.ResponseWriter) error {
		start := time.Now()

		form := &stepForm{}
		if err := web.DecodeAndValidateForm(form, r); err != nil {
			return errors.Wrapf(err, "request failed validation")
		}

		session := flow.Session{ID: form.SessionID, Caller: form.CallerNumber, Digits: form.Digits}

		logrus.WithFields(logrus.Fields{
			"step":       step,
			"session_id": session.ID,
			"caller":     session.Caller,
			"digits":     session.Digits,
		}).Info("voice callback received")

		actions, err := flow.New(s.Config.AppURL).Resolve(step, session)
		if err != nil {
			return errors.Wrapf(err, "error resolving step %s", step)
		}

		librato.Gauge(fmt.Sprintf("ongea.%s_elapsed", step), float64(time.Since(start))/float64(time.Second))

		// nothing to do yet, tell the carrier so without restarting the flow
		if len(actions) == 0 {
			return atvoice.WriteEmptyResponse(w)
		}

		return atvoice.WriteResponse(w, actions...)
	}
}

func handleRecording(ctx context.Context, s *web.Server, r *http.Request, w http.ResponseWriter) error {
	form := &recordingForm{}
	if err := web.DecodeAndValidateForm(form, r); err != nil {
		return errors.Wrapf(err, "request failed validation")
	}

	duration, _ := strconv.Atoi(form.Duration)

	session := flow.Session{ID: form.SessionID, Caller: form.CallerNumber}
	recording := flow.Recording{URL: form.RecordingURL, Duration: duration}

	actions := flow.New(s.Config.AppURL).RecordingReceived(session, recording)

	return atvoice.WriteResponse(w, actions...)
}

func handleHealth(ctx context.Context, s *web.Server, r *http.Request) (interface{}, int, error) {
	response := map[string]string{
		"status":  "healthy",
		"service": "voice_api",
	}
	return response, http.StatusOK, nil
}
