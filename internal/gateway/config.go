package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultListen            = ":8080"
	DefaultPath              = "/api/askai"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)

var (
	ErrNoUpstream  = errors.New("gateway: upstream URL is required")
	ErrInvalidPath = errors.New("gateway: path must start with / and not end with /")
)

// Config describes the listening side and the upstream askai API
type Config struct {
	Listen            string
	Upstream          string
	Path              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func (c *Config) upstreamURL() (*url.URL, error) {
	if strings.TrimSpace(c.Upstream) == "" {
		return nil, ErrNoUpstream
	}
	u, err := url.Parse(c.Upstream)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid upstream %q: %w", c.Upstream, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway: upstream %q must be http or https", c.Upstream)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("gateway: upstream %q has no host", c.Upstream)
	}
	return u, nil
}

func (c *Config) validatePath() error {
	if !strings.HasPrefix(c.Path, "/") || strings.HasSuffix(c.Path, "/") {
		return ErrInvalidPath
	}
	return nil
}
