package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/colonies/internal/observability"
)

// MaxReplyBytes bounds how much of a reply body is read.
const MaxReplyBytes = 64 << 20

const (
	apiSegment    = "api"
	pubsubSegment = "pubsub"
)

// Client posts signed envelopes to one server.
type Client struct {
	cfg       Config
	http      *http.Client
	tls       *tls.Config
	streamURL string
}

func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	cfg.ServerURL = strings.TrimSpace(cfg.ServerURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.ClientTLSConfig()
	if err != nil {
		return nil, err
	}
	streamURL, err := deriveStreamURL(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	transport.TLSHandshakeTimeout = cfg.HandshakeTimeout

	return &Client{
		cfg:       cfg,
		http:      &http.Client{Transport: transport},
		tls:       tlsCfg,
		streamURL: streamURL,
	}, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// TLSConfig returns a copy of the client TLS settings, or nil when disabled.
func (c *Client) TLSConfig() *tls.Config {
	if c.tls == nil {
		return nil
	}
	return c.tls.Clone()
}

// StreamURL is the websocket endpoint paired with the server url.
func (c *Client) StreamURL() string {
	return c.streamURL
}

// Call composes, signs and sends one request.
func (c *Client) Call(ctx context.Context, payloadType string, msg any, prvKey string) (string, error) {
	body, err := Compose(payloadType, msg, prvKey)
	if err != nil {
		observability.RecordRPCRequest(payloadType, Outcome(err), 0)
		return "", err
	}
	return c.send(ctx, payloadType, body)
}

// CallInto is Call followed by unmarshalling the reply into out.
func (c *Client) CallInto(ctx context.Context, payloadType string, msg any, prvKey string, out any) error {
	reply, err := c.Call(ctx, payloadType, msg, prvKey)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(reply), out); err != nil {
		return decodeError(fmt.Errorf("%s reply: %w", payloadType, err))
	}
	return nil
}

// Send posts an already composed body. A body that is not an envelope is
// rejected before anything goes on the wire.
func (c *Client) Send(ctx context.Context, body []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", decodeError(fmt.Errorf("request envelope: %w", err))
	}
	return c.send(ctx, env.PayloadType, body)
}

func (c *Client) send(ctx context.Context, payloadType string, body []byte) (string, error) {
	start := time.Now()
	status, reply, err := c.post(ctx, body)
	if err == nil {
		var text string
		text, err = DecodeReply(status, reply)
		if err == nil {
			c.record(payloadType, status, start, nil)
			return text, nil
		}
	}
	c.record(payloadType, status, start, err)
	return "", err
}

// post applies RequestTimeout unless ctx already carries a deadline.
func (c *Client) post(ctx context.Context, body []byte) (int, []byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, connectionError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, connectionError(err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, MaxReplyBytes))
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindConnection, Status: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, reply, nil
}

func (c *Client) record(payloadType string, status int, start time.Time, err error) {
	duration := time.Since(start)
	outcome := Outcome(err)
	observability.RecordRPCRequest(payloadType, outcome, duration)

	event := log.Debug()
	if outcome == KindConnection.String() {
		event = log.Warn()
	}
	event.
		Str("payloadtype", payloadType).
		Int("status", status).
		Dur("duration", duration).
		Str("outcome", outcome).
		Err(err).
		Msg("rpc.Client.Send")
}

func deriveStreamURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidServerURL, u.Scheme)
	}

	trimmed := strings.TrimSuffix(u.Path, "/")
	if path.Base(trimmed) == apiSegment {
		u.Path = path.Join(path.Dir(trimmed), pubsubSegment)
	} else {
		u.Path = path.Join("/", trimmed, pubsubSegment)
	}
	u.RawPath = ""
	return u.String(), nil
}
