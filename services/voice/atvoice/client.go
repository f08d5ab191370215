package atvoice

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/nyaruka/gocommon/httpx"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// BaseURL is the default API endpoint for the carrier's voice API (public so
// tests can override it)
var BaseURL = "https://voice.africastalking.com"

const (
	callPath        = "/call"
	mediaUploadPath = "/mediaUpload"

	apiKeyHeader = "apiKey"
)

// Client is a thin wrapper around the carrier's REST API for the operations
// that originate on our side, outbound calls and media uploads. All call-flow
// decisions happen elsewhere, nothing here branches.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	username      string
	virtualNumber string
}

// NewClient creates a new voice API client for the passed in account credentials
func NewClient(httpClient *http.Client, apiKey, username, virtualNumber string) *Client {
	return &Client{
		httpClient:    httpClient,
		baseURL:       BaseURL,
		apiKey:        apiKey,
		username:      username,
		virtualNumber: virtualNumber,
	}
}

// Call requests a new outbound call to the passed in number from our virtual
// number, returning the carrier assigned session id
func (c *Client) Call(to string) (string, *httpx.Trace, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("from", c.virtualNumber)
	form.Set("to", to)

	trace, err := c.postRequest(c.baseURL+callPath, form)
	if err != nil {
		return "", trace, errors.Wrapf(err, "error trying to start call")
	}

	if trace.Response.StatusCode/100 != 2 {
		return "", trace, errors.Errorf("received non 2xx status for call request: %d", trace.Response.StatusCode)
	}

	errMsg, _ := jsonparser.GetString(trace.ResponseBody, "errorMessage")
	if errMsg != "" && errMsg != "None" {
		return "", trace, errors.Errorf("call request failed: %s", errMsg)
	}

	sessionID, err := jsonparser.GetString(trace.ResponseBody, "entries", "[0]", "sessionId")
	if err != nil {
		return "", trace, errors.Errorf("invalid json body in call response")
	}

	return sessionID, trace, nil
}

// UploadMedia asks the carrier to fetch and host the media file at the passed
// in URL for the passed in number
func (c *Client) UploadMedia(mediaURL string, phoneNumber string) (*httpx.Trace, error) {
	if phoneNumber == "" {
		phoneNumber = c.virtualNumber
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("url", mediaURL)
	form.Set("phoneNumber", phoneNumber)

	trace, err := c.postRequest(c.baseURL+mediaUploadPath, form)
	if err != nil {
		return trace, errors.Wrapf(err, "error trying to upload media")
	}

	if trace.Response.StatusCode/100 != 2 {
		return trace, errors.Errorf("received non 2xx status for media upload: %d", trace.Response.StatusCode)
	}

	return trace, nil
}

func (c *Client) postRequest(sendURL string, form url.Values) (*httpx.Trace, error) {
	req, _ := http.NewRequest(http.MethodPost, sendURL, strings.NewReader(form.Encode()))
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return httpx.DoTrace(c.httpClient, req, nil, nil, -1)
}
