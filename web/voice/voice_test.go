package voice

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ongeahq/ongea/runtime"
	"github.com/ongeahq/ongea/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*web.Server, string) {
	config := runtime.NewDefaultConfig()
	config.Port = 8071
	config.AppURL = "https://ongea.example.com"

	wg := &sync.WaitGroup{}
	server := web.NewServer(context.Background(), config, nil, wg)
	server.Start()

	base := fmt.Sprintf("http://localhost:%d", config.Port)

	// wait for the server to come up
	for i := 0; i < 20; i++ {
		resp, err := http.Get(base + "/")
		if err == nil {
			ioutil.ReadAll(resp.Body)
			resp.Body.Close()
			return server, base
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("test server never came up")
	return nil, ""
}

func TestWebhooks(t *testing.T) {
	server, base := startTestServer(t)
	defer server.Stop()

	tcs := []struct {
		path        string
		form        url.Values
		status      int
		contentType string
		contains    []string
	}{
		{
			path:        "/voice",
			form:        nil,
			status:      200,
			contentType: "text/xml",
			contains: []string{
				"Welcome to Ongea Emergency Services! Press 1 for English or 2 for Swahili.",
				`timeout="10"`,
				`finishOnKey="#"`,
				`numDigits="1"`,
				`callbackUrl="https://ongea.example.com/voice/language"`,
			},
		},
		{
			path:        "/voice/language",
			form:        url.Values{"dtmfDigits": {"1"}, "sessionId": {"ATSid1"}, "callerNumber": {"+254700111222"}},
			status:      200,
			contentType: "text/xml",
			contains: []string{
				"Press 1 to report hunger",
				`callbackUrl="https://ongea.example.com/service/selection"`,
			},
		},
		{
			path:        "/voice/language",
			form:        url.Values{"dtmfDigits": {"5"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Invalid selection. Please try again."},
		},
		{
			path:   "/service/selection",
			form:   nil,
			status: 204,
		},
		{
			path:        "/service/selection",
			form:        url.Values{"dtmfDigits": {"2"}},
			status:      200,
			contentType: "text/xml",
			contains: []string{
				"water shortage",
				`timeout="15"`,
				`callbackUrl="https://ongea.example.com/water/region"`,
			},
		},
		{
			path:        "/service/selection",
			form:        url.Values{"dtmfDigits": {"9"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Invalid selection. Please press 1, 2, or 3."},
		},
		{
			path:        "/hunger/region",
			form:        url.Values{"dtmfDigits": {"2"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Turkana region office", "hunger situation"},
		},
		{
			path:        "/water/region",
			form:        url.Values{"dtmfDigits": {"3"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Kiambu water department", "water shortage"},
		},
		{
			path:   "/water/region",
			form:   nil,
			status: 204,
		},
		{
			path:        "/hunger/region",
			form:        url.Values{"dtmfDigits": {"7"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Invalid selection. Goodbye."},
		},
		{
			path:        "/emergency/region",
			form:        url.Values{"dtmfDigits": {"1"}},
			status:      200,
			contentType: "text/xml",
			contains: []string{
				"Emergency services for Nairobi region activated",
				`maxLength="60"`,
				`playBeep="true"`,
				`callbackUrl="https://ongea.example.com/emergency/recording"`,
			},
		},
		{
			path:        "/emergency/region",
			form:        url.Values{"dtmfDigits": {"4"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Invalid selection. Please press 1, 2, or 3."},
		},
		{
			path:        "/emergency/recording",
			form:        url.Values{"recordingUrl": {"https://cdn.example.com/rec.mp3"}, "durationInSeconds": {"42"}, "sessionId": {"ATSid1"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"Your emergency report has been recorded", "respond shortly"},
		},
		{
			path:        "/ongea",
			form:        url.Values{"dtmfDigits": {"2545"}},
			status:      200,
			contentType: "text/xml",
			contains: []string{
				"Welcome Back to Medicare Services.",
				`callbackUrl="https://ongea.example.com/emergency/region"`,
			},
		},
		{
			path:        "/ongea",
			form:        url.Values{"dtmfDigits": {"1234"}},
			status:      200,
			contentType: "text/xml",
			contains:    []string{"The code entered is not valid."},
		},
		{
			path:   "/ongea",
			form:   url.Values{"dtmfDigits": {"undefined"}},
			status: 204,
		},
		{
			path:   "/ongea",
			form:   nil,
			status: 204,
		},
	}

	for i, tc := range tcs {
		form := tc.form
		if form == nil {
			form = url.Values{}
		}

		resp, err := http.PostForm(base+tc.path, form)
		require.NoError(t, err, "%d: error posting to %s", i, tc.path)

		body, err := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err, "%d: error reading body", i)

		assert.Equal(t, tc.status, resp.StatusCode, "%d: unexpected status for %s", i, tc.path)

		if tc.status == 204 {
			assert.Empty(t, body, "%d: expected empty body for %s", i, tc.path)
			continue
		}

		assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"), "%d: unexpected content type for %s", i, tc.path)
		for _, c := range tc.contains {
			assert.Contains(t, string(body), c, "%d: missing content for %s", i, tc.path)
		}
	}
}

func TestHealth(t *testing.T) {
	server, base := startTestServer(t)
	defer server.Stop()

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, string(body), `"status": "healthy"`)
	assert.Contains(t, string(body), `"service": "voice_api"`)
}

func TestNotFound(t *testing.T) {
	server, base := startTestServer(t)
	defer server.Stop()

	resp, err := http.Get(base + "/nothing/here")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 404, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "not found"))
}
