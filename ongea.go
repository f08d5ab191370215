package ongea

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ongeahq/ongea/runtime"
	"github.com/ongeahq/ongea/services/voice/atvoice"
	"github.com/ongeahq/ongea/web"

	"github.com/nyaruka/librato"
	"github.com/sirupsen/logrus"
)

// Ongea is our emergency reporting voice service
type Ongea struct {
	ctx    context.Context
	cancel context.CancelFunc

	config *runtime.Config
	wg     *sync.WaitGroup

	at        *atvoice.Client
	webserver *web.Server
}

// NewOngea creates and returns a new ongea instance
func NewOngea(config *runtime.Config) *Ongea {
	o := &Ongea{
		config: config,
		wg:     &sync.WaitGroup{},
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())

	return o
}

// Start starts the ongea service
func (o *Ongea) Start() error {
	c := o.config

	// if we have a librato token, configure it
	if c.LibratoToken != "" {
		host, _ := os.Hostname()
		librato.Configure(c.LibratoUsername, c.LibratoToken, host, time.Second, o.wg)
		librato.Start()
	}

	// warn if we can't place outbound calls
	if c.APIKey == "" {
		logrus.Error("no carrier api key configured, outbound calls will fail")
	}

	// create our carrier client, used for the outbound call and media upload
	// operations which live outside the webhook flow
	o.at = atvoice.NewClient(&http.Client{Timeout: 30 * time.Second}, c.APIKey, c.Username, c.VirtualNumber)

	// start our web server
	o.webserver = web.NewServer(o.ctx, c, o.at, o.wg)
	o.webserver.Start()

	logrus.Info("ongea started")

	return nil
}

// Stop stops the ongea service
func (o *Ongea) Stop() error {
	logrus.Info("ongea stopping")
	librato.Stop()
	o.cancel()

	// stop our web server
	o.webserver.Stop()

	o.wg.Wait()
	logrus.Info("ongea stopped")
	return nil
}
