package completion

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

type config struct {
	baseURL string
	client  *http.Client
}

func newConfig(options ...Option) *config {
	cfg := &config{
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range options {
		o(cfg)
	}
	return cfg
}

type Option func(*config)

// WithBaseURL overrides the API endpoint, mostly for tests and proxies.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}
