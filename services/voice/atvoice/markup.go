package atvoice

import (
	"encoding/xml"
	"net/http"

	"github.com/pkg/errors"
)

// Action is a single instruction to the carrier, rendered as one element of
// the voice response document.
type Action interface {
	action()
}

type Say struct {
	XMLName string `xml:"Say"`
	Text    string `xml:",chardata"`
}

type CollectDigits struct {
	XMLName     string `xml:"CollectDigits"`
	Timeout     int    `xml:"timeout,attr,omitempty"`
	FinishOnKey string `xml:"finishOnKey,attr,omitempty"`
	NumDigits   int    `xml:"numDigits,attr,omitempty"`
	CallbackURL string `xml:"callbackUrl,attr,omitempty"`
}

type Record struct {
	XMLName     string `xml:"Record"`
	FinishOnKey string `xml:"finishOnKey,attr,omitempty"`
	MaxLength   int    `xml:"maxLength,attr,omitempty"`
	PlayBeep    bool   `xml:"playBeep,attr"`
	CallbackURL string `xml:"callbackUrl,attr,omitempty"`
}

type Play struct {
	XMLName string `xml:"Play"`
	URL     string `xml:",chardata"`
}

type Dial struct {
	XMLName    string `xml:"Dial"`
	Record     bool   `xml:"record,attr,omitempty"`
	Sequential bool   `xml:"sequential,attr,omitempty"`
	CallerID   string `xml:"callerId,attr,omitempty"`
	Number     string `xml:"Number"`
}

type Redirect struct {
	XMLName string `xml:"Redirect"`
	URL     string `xml:",chardata"`
}

type Reject struct {
	XMLName string `xml:"Reject"`
}

type Hangup struct {
	XMLName string `xml:"Hangup"`
}

func (Say) action()           {}
func (CollectDigits) action() {}
func (Record) action()        {}
func (Play) action()          {}
func (Dial) action()          {}
func (Redirect) action()      {}
func (Reject) action()        {}
func (Hangup) action()        {}

// Response is the carrier's envelope around the actions for one call turn
type Response struct {
	XMLName  string   `xml:"Response"`
	Commands []Action `xml:",innerxml"`
}

// Render marshals the passed in actions into a complete voice response document,
// all free text is escaped by the marshaller
func Render(actions ...Action) (string, error) {
	r := &Response{Commands: actions}

	body, err := xml.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "unable to marshal voice response")
	}

	return xml.Header + string(body), nil
}

// WriteResponse renders the passed in actions and writes them as the carrier's
// markup content type
func WriteResponse(w http.ResponseWriter, actions ...Action) error {
	body, err := Render(actions...)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/xml")
	_, err = w.Write([]byte(body))
	return errors.Wrap(err, "error writing voice response")
}

// WriteEmptyResponse writes our no-op response, used when a callback fires before
// there is any caller input to act on
func WriteEmptyResponse(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}
