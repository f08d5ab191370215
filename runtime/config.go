package runtime

// Config is our top level configuration object, read once at startup and
// never mutated after that
type Config struct {
	Address string `help:"the address to bind our web server to"`
	Port    int    `help:"the port to bind our web server to"`

	APIKey        string `help:"the API key used to authenticate to the carrier's voice API"`
	Username      string `help:"the carrier account username, usually sandbox when testing"`
	VirtualNumber string `help:"the virtual number outbound calls are placed from"`
	AppURL        string `help:"the public base URL used to build the callback URL in every emitted action"`

	LibratoUsername string `help:"the username that will be used to authenticate to Librato"`
	LibratoToken    string `help:"the token that will be used to authenticate to Librato"`

	SentryDSN string `help:"the DSN used for logging errors to Sentry"`
	LogLevel  string `help:"the logging level ongea should use"`
	Version   string `help:"the version of this ongea install"`
}

// NewDefaultConfig returns a new default configuration object
func NewDefaultConfig() *Config {
	return &Config{
		Address: "localhost",
		Port:    5001,

		Username: "sandbox",
		AppURL:   "https://your-domain.com",

		LogLevel: "info",
		Version:  "Dev",
	}
}
