package client

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/ytget/ytarchive/internal/logger"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 1

	userAgentValue   = "ytarchive/1.0 (+https://github.com/ytget/ytarchive)"
	initialBackoff   = 200 * time.Millisecond
	maxBackoff       = 3 * time.Second
	retryableMinCode = http.StatusInternalServerError // 500
)

// defaultTransport is a tuned HTTP transport reused across clients.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 20 * time.Second,
	ForceAttemptHTTP2:     true,
	// Response bodies are decoded by the API client, which advertises br as well.
	DisableCompression: true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout time.Duration
	// Retries is the number of attempts for idempotent requests. Values below
	// one mean a single attempt.
	Retries     int
	UserAgent   string
	ProxyURL    string
	TokenSource oauth2.TokenSource
}

// Client wraps http.Client with default headers, optional OAuth2 bearer
// tokens and an attempt count.
type Client struct {
	HTTPClient *http.Client
	Retries    int
	UserAgent  string
}

// New creates a new Client with a tuned Transport, default timeout and a single attempt.
func New() *Client {
	return NewWith(Config{})
}

// NewWith creates a new client with provided config. Zero values use defaults.
func NewWith(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultAttempts
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgentValue
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		if proxyFunc, err := proxyFromURLString(cfg.ProxyURL); err == nil {
			tr.Proxy = proxyFunc
		} else {
			logger.WithComponent(logger.ComponentClient).Warn("ignoring invalid proxy url", map[string]any{"proxy": cfg.ProxyURL, "error": err.Error()})
		}
	}

	var rt http.RoundTripper = &retryTransport{base: tr, attempts: retries, userAgent: ua}
	if cfg.TokenSource != nil {
		rt = &oauth2.Transport{Source: cfg.TokenSource, Base: rt}
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: rt,
		},
		Retries:   retries,
		UserAgent: ua,
	}
}

// retryTransport sets the User-Agent and repeats bodiless GET requests on
// network errors and 5xx responses.
type retryTransport struct {
	base      http.RoundTripper
	attempts  int
	userAgent string
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.userAgent)
	}

	attempts := t.attempts
	if attempts < 1 || r.Method != http.MethodGet || (r.Body != nil && r.Body != http.NoBody) {
		attempts = 1
	}

	log := logger.WithComponent(logger.ComponentClient)
	backoff := initialBackoff
	var (
		resp *http.Response
		err  error
	)
	for attempt := 1; ; attempt++ {
		start := time.Now()
		resp, err = t.base.RoundTrip(r)
		fields := map[string]any{"method": r.Method, "host": r.URL.Host, "path": r.URL.Path, "attempt": attempt, "elapsed": time.Since(start).Round(time.Millisecond)}
		if err == nil {
			fields["status"] = resp.StatusCode
		} else {
			fields["error"] = err.Error()
		}
		log.Debug("http round trip", fields)

		if err == nil && resp.StatusCode < retryableMinCode {
			return resp, nil
		}
		if attempt >= attempts {
			return resp, err
		}
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		select {
		case <-r.Context().Done():
			return nil, r.Context().Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// proxyFromURLString parses a proxy URL and returns a Proxy function.
func proxyFromURLString(raw string) (func(*http.Request) (*url.URL, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return http.ProxyURL(u), nil
}
