package rpc

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultServerURL = "http://localhost:50080/api"

var (
	ErrServerURLRequired = errors.New("rpc: server url required")
	ErrInvalidServerURL  = errors.New("rpc: invalid server url")
)

type SecurityMode string

const (
	SecurityModeDevelopment SecurityMode = "development"
	SecurityModeProduction  SecurityMode = "production"
)

// TLSConfig controls client-side TLS for both the HTTP and websocket legs.
type TLSConfig struct {
	Enabled            bool
	Mutual             bool
	InsecureSkipVerify bool
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
}

// BackoffConfig defines retry backoff behavior for callers that poll.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config is threaded into every request; there is no process-wide URL.
type Config struct {
	ServerURL        string
	RequestTimeout   time.Duration
	HandshakeTimeout time.Duration
	StreamGrace      time.Duration
	SecurityMode     SecurityMode
	TLS              TLSConfig
	Backoff          BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		ServerURL:        DefaultServerURL,
		RequestTimeout:   30 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		StreamGrace:      5 * time.Second,
		SecurityMode:     SecurityModeDevelopment,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.ServerURL) == "" {
		c.ServerURL = def.ServerURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.StreamGrace <= 0 {
		c.StreamGrace = def.StreamGrace
	}
	c.SecurityMode = NormalizeSecurityMode(c.SecurityMode)
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff.InitialDelay = def.Backoff.InitialDelay
	}
	if c.Backoff.Multiplier < 1.0 {
		c.Backoff.Multiplier = def.Backoff.Multiplier
	}
	if c.Backoff.MaxDelay <= 0 {
		c.Backoff.MaxDelay = def.Backoff.MaxDelay
	}
	return c
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrServerURLRequired
	}
	u, err := url.Parse(strings.TrimSpace(c.ServerURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidServerURL)
	}
	if c.TLS.Enabled && u.Scheme != "https" {
		return fmt.Errorf("%w: tls enabled for %s url", ErrInvalidServerURL, u.Scheme)
	}
	return c.ValidateClientTransport()
}
