package flow

import (
	"github.com/ongeahq/ongea/services/voice/atvoice"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Step is one point in the call flow, each step is also a callable webhook
// entry point. All continuation state lives in the callback URL the previous
// step emitted, never on the server.
type Step string

const (
	StepEntry      = Step("entry")
	StepLanguage   = Step("language")
	StepService    = Step("service")
	StepHunger     = Step("hunger_region")
	StepWater      = Step("water_region")
	StepEmergency  = Step("emergency_region")
	StepRecording  = Step("emergency_recording")
	StepDiagnostic = Step("diagnostic")
)

// the webhook paths each step is served on, also used to build the callback
// URLs embedded in emitted actions
const (
	EntryPath      = "/voice"
	LanguagePath   = "/voice/language"
	ServicePath    = "/service/selection"
	HungerPath     = "/hunger/region"
	WaterPath      = "/water/region"
	EmergencyPath  = "/emergency/region"
	RecordingPath  = "/emergency/recording"
	DiagnosticPath = "/ongea"
)

const (
	menuTimeout   = 10
	regionTimeout = 15
	recordMaxLen  = 60
	finishKey     = "#"
)

// the carrier sends the literal string "undefined" on some callbacks that
// fire before any input exists
const undefinedDigits = "undefined"

// Session is the ambient context of a single callback from the carrier. Digits
// is empty on steps where the caller hasn't entered anything yet.
type Session struct {
	ID     string
	Caller string
	Digits string
}

// Recording is the payload of the carrier's recording-complete callback
type Recording struct {
	URL      string
	Duration int
}

// RecordingHandler is called when an emergency recording callback arrives, it
// is where persistence and responder notification can be hooked in.
type RecordingHandler func(session Session, recording Recording)

// canned acknowledgements per category, keyed by the region digit. The key
// sets must stay aligned across categories.
var hungerResponses = map[string]string{
	"1": "Thank you. Nairobi region office has been notified about the hunger situation. They will contact you shortly.",
	"2": "Thank you. Turkana region office has been notified about the hunger situation. They will contact you shortly.",
	"3": "Thank you. Kiambu region office has been notified about the hunger situation. They will contact you shortly.",
}

var waterResponses = map[string]string{
	"1": "Thank you. Nairobi water department has been notified about the water shortage. They will address this issue.",
	"2": "Thank you. Turkana water department has been notified about the water shortage. They will address this issue.",
	"3": "Thank you. Kiambu water department has been notified about the water shortage. They will address this issue.",
}

var emergencyRegions = map[string]string{
	"1": "Nairobi",
	"2": "Turkana",
	"3": "Kiambu",
}

// Flow resolves call-flow steps into the actions the carrier should perform
// next. It is stateless and safe for concurrent use.
type Flow struct {
	baseURL           string
	recordingReceived RecordingHandler
}

// Option is a construction option for a flow
type Option func(*Flow)

// WithRecordingReceived sets the handler invoked for completed emergency recordings
func WithRecordingReceived(handler RecordingHandler) Option {
	return func(f *Flow) {
		f.recordingReceived = handler
	}
}

// New creates a new flow which builds its callback URLs on the passed in base URL
func New(baseURL string, options ...Option) *Flow {
	f := &Flow{
		baseURL: baseURL,
		recordingReceived: func(session Session, recording Recording) {
			logrus.WithFields(logrus.Fields{
				"session_id":    session.ID,
				"caller":        session.Caller,
				"recording_url": recording.URL,
				"duration":      recording.Duration,
			}).Info("emergency recording received")
		},
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *Flow) callbackURL(path string) string {
	return f.baseURL + path
}

// Resolve returns the ordered actions for the passed in step given the
// caller's input, or nil for steps that have nothing to do yet (the carrier
// sometimes calls back before any input exists). Steps not driven by digit
// input are an error here.
func (f *Flow) Resolve(step Step, session Session) ([]atvoice.Action, error) {
	switch step {
	case StepEntry:
		return f.entry(), nil
	case StepLanguage:
		return f.languageSelect(session), nil
	case StepService:
		return f.serviceSelect(session), nil
	case StepHunger:
		return f.regionSelect(session, hungerResponses), nil
	case StepWater:
		return f.regionSelect(session, waterResponses), nil
	case StepEmergency:
		return f.emergencyRegion(session), nil
	case StepDiagnostic:
		return f.diagnostic(session), nil
	case StepRecording:
		return nil, errors.Errorf("step %s takes a recording callback, not digits", step)
	default:
		return nil, errors.Errorf("unknown step: %s", step)
	}
}

// entry greets the caller and starts language selection, it never waits on
// prior input
func (f *Flow) entry() []atvoice.Action {
	return []atvoice.Action{
		atvoice.Say{Text: "Welcome to Ongea Emergency Services! Press 1 for English or 2 for Swahili."},
		atvoice.CollectDigits{
			Timeout:     menuTimeout,
			FinishOnKey: finishKey,
			NumDigits:   1,
			CallbackURL: f.callbackURL(LanguagePath),
		},
	}
}

func (f *Flow) languageSelect(session Session) []atvoice.Action {
	if session.Digits != "1" && session.Digits != "2" {
		return []atvoice.Action{atvoice.Say{Text: "Invalid selection. Please try again."}}
	}

	// for now we proceed in English regardless of the selection
	return []atvoice.Action{
		atvoice.Say{Text: "Welcome to Ongea Emergency Services. Press 1 to report hunger, press 2 to report water shortage, press 3 for medical emergency."},
		atvoice.CollectDigits{
			Timeout:     menuTimeout,
			FinishOnKey: finishKey,
			CallbackURL: f.callbackURL(ServicePath),
		},
	}
}

func (f *Flow) serviceSelect(session Session) []atvoice.Action {
	if session.Digits == "" {
		return nil
	}

	prompt := ""
	path := ""

	switch session.Digits {
	case "1":
		prompt = "Thank you for reporting hunger. Please select your region: Press 1 for Nairobi, 2 for Turkana, 3 for Kiambu."
		path = HungerPath
	case "2":
		prompt = "Thank you for reporting water shortage. Please select your region: Press 1 for Nairobi, 2 for Turkana, 3 for Kiambu."
		path = WaterPath
	case "3":
		prompt = "Medical emergency reported. Please select your region: Press 1 for Nairobi, 2 for Turkana, 3 for Kiambu."
		path = EmergencyPath
	default:
		return []atvoice.Action{atvoice.Say{Text: "Invalid selection. Please press 1, 2, or 3."}}
	}

	return []atvoice.Action{
		atvoice.Say{Text: prompt},
		atvoice.CollectDigits{
			Timeout:     regionTimeout,
			FinishOnKey: finishKey,
			CallbackURL: f.callbackURL(path),
		},
	}
}

func (f *Flow) regionSelect(session Session, responses map[string]string) []atvoice.Action {
	if session.Digits == "" {
		return nil
	}

	// no further collection is issued either way so the call ends after the
	// acknowledgement
	text, found := responses[session.Digits]
	if !found {
		text = "Invalid selection. Goodbye."
	}
	return []atvoice.Action{atvoice.Say{Text: text}}
}

func (f *Flow) emergencyRegion(session Session) []atvoice.Action {
	region, found := emergencyRegions[session.Digits]
	if !found {
		return []atvoice.Action{atvoice.Say{Text: "Invalid selection. Please press 1, 2, or 3."}}
	}

	return []atvoice.Action{
		atvoice.Say{Text: "Emergency services for " + region + " region activated. Please describe your emergency in detail and press hash when finished."},
		atvoice.Record{
			FinishOnKey: finishKey,
			MaxLength:   recordMaxLen,
			PlayBeep:    true,
			CallbackURL: f.callbackURL(RecordingPath),
		},
	}
}

func (f *Flow) diagnostic(session Session) []atvoice.Action {
	if session.Digits == "" || session.Digits == undefinedDigits {
		return nil
	}

	if session.Digits != "2545" {
		return []atvoice.Action{atvoice.Say{Text: "The code entered is not valid."}}
	}

	return []atvoice.Action{
		atvoice.Say{Text: "Welcome Back to Medicare Services."},
		atvoice.CollectDigits{
			Timeout:     regionTimeout,
			FinishOnKey: finishKey,
			CallbackURL: f.callbackURL(EmergencyPath),
		},
	}
}

// RecordingReceived handles the carrier's recording-complete callback. The
// recording itself is handed to the configured handler, the caller always
// hears the same closing acknowledgement.
func (f *Flow) RecordingReceived(session Session, recording Recording) []atvoice.Action {
	f.recordingReceived(session, recording)

	return []atvoice.Action{
		atvoice.Say{Text: "Your emergency report has been recorded and sent to the appropriate authorities. Emergency services will respond shortly. Thank you for calling."},
	}
}
