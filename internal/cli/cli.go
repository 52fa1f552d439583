// Package cli holds the flags and wiring shared by the command line tools.
package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ytget/ytarchive/auth"
	"github.com/ytget/ytarchive/internal/logger"
	"github.com/ytget/ytarchive/pkg/client"
	"github.com/ytget/ytarchive/youtube/dataapi"
)

const (
	DefaultCredsFile = "creds-user.json"
	DefaultDataDir   = "data"
)

// Options are the connection flags common to every tool.
type Options struct {
	CredsFile string
	APIBase   string
	APIKey    string
	UserAgent string
	Proxy     string
	Timeout   time.Duration
	Retries   int
	Verbose   bool
}

// Register adds the connection flags to fs.
func (o *Options) Register(fs *flag.FlagSet) {
	fs.StringVar(&o.CredsFile, "creds", DefaultCredsFile, "OAuth2 credentials file (authorized user JSON)")
	fs.StringVar(&o.APIBase, "api-base", dataapi.DefaultBaseURL, "Data API base URL")
	fs.StringVar(&o.APIKey, "api-key", "", "Optional API key sent with every request")
	fs.DurationVar(&o.Timeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	fs.IntVar(&o.Retries, "retries", 1, "HTTP attempts for transient errors")
	fs.StringVar(&o.UserAgent, "ua", "", "Override User-Agent header")
	fs.StringVar(&o.Proxy, "proxy", "", "Proxy URL (http/https/socks)")
	fs.BoolVar(&o.Verbose, "v", false, "Log at DEBUG level regardless of YTARCHIVE_LOG_LEVEL")
}

// SetupLogging installs the global logger configured from YTARCHIVE_LOG_*,
// lowered to DEBUG with -v. It must run before any component logger is created.
func (o *Options) SetupLogging() error {
	cfg, err := logger.EnvironmentConfig()
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	l, err := logger.CreateLoggerFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if o.Verbose {
		l.SetLevel(logger.DEBUG)
	}
	logger.SetGlobalLogger(l)
	return nil
}

// Service loads the credentials and returns an authorized Data API client.
func (o *Options) Service(ctx context.Context) (*dataapi.Client, error) {
	creds, err := auth.LoadCredentials(o.CredsFile)
	if err != nil {
		return nil, err
	}
	c := client.NewWith(client.Config{
		Timeout:     o.Timeout,
		Retries:     o.Retries,
		UserAgent:   o.UserAgent,
		ProxyURL:    o.Proxy,
		TokenSource: creds.TokenSource(ctx),
	})
	return dataapi.New(c.HTTPClient).WithBaseURL(o.APIBase).WithAPIKey(o.APIKey), nil
}
