package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/colonies/internal/observability"
	"github.com/danmuck/colonies/pkg/rpc"
)

const closeWriteTimeout = time.Second

var (
	// ErrDone is returned by Next once the session ended normally.
	ErrDone            = errors.New("pubsub: session done")
	ErrNegativeTimeout = errors.New("pubsub: negative timeout")
	ErrUnexpectedFrame = errors.New("pubsub: unexpected frame")
)

// Request describes one subscription. Msg must carry msgtype == PayloadType.
type Request struct {
	PayloadType string
	Msg         any
	PrvKey      string
	Timeout     time.Duration
}

// Session is one open subscription. Next and Drain must not be called
// concurrently; State, Termination and Close are safe from any goroutine.
type Session struct {
	payloadType string
	deadline    time.Time

	conn      *websocket.Conn
	stopWatch func() bool

	mu          sync.Mutex
	state       State
	termination Termination
	recorded    bool
}

// Dial connects to the stream endpoint and sends the signed request. A session
// whose deadline expires while connecting is returned already timed out.
func Dial(ctx context.Context, c *rpc.Client, req Request) (*Session, error) {
	if req.Timeout < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeTimeout, req.Timeout)
	}
	body, err := rpc.Compose(req.PayloadType, req.Msg, req.PrvKey)
	if err != nil {
		return nil, err
	}

	cfg := c.Config()
	s := &Session{
		payloadType: req.PayloadType,
		deadline:    time.Now().Add(req.Timeout + cfg.StreamGrace),
		state:       StateConnecting,
	}

	dialCtx, cancel := context.WithDeadline(ctx, s.deadline)
	defer cancel()
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
		TLSClientConfig:  c.TLSConfig(),
	}
	conn, _, err := dialer.DialContext(dialCtx, c.StreamURL(), nil)
	if err != nil {
		if s.expired() && ctx.Err() == nil {
			s.finish(StateTimedOut, TerminationTimedOut)
			return s, nil
		}
		s.finish(StateFailed, TerminationNone)
		return nil, &rpc.Error{Kind: rpc.KindConnection, Err: err}
	}
	s.conn = conn
	s.stopWatch = context.AfterFunc(ctx, func() { _ = conn.Close() })
	log.Debug().
		Str("url", c.StreamURL()).
		Str("payloadtype", req.PayloadType).
		Dur("timeout", req.Timeout).
		Msg("pubsub.Session.Dial connected")

	s.setState(StateSending)
	_ = conn.SetWriteDeadline(s.deadline)
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		if s.expired() && ctx.Err() == nil {
			s.terminate(StateTimedOut, TerminationTimedOut)
			return s, nil
		}
		s.terminate(StateFailed, TerminationNone)
		return nil, &rpc.Error{Kind: rpc.KindConnection, Err: err}
	}
	s.setState(StateListening)
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Termination() Termination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termination
}

// Deadline is the overall session deadline: timeout plus stream grace.
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// Next blocks for the next non-empty batch. It returns ErrDone after a
// normal termination and an *rpc.Error after a failure.
func (s *Session) Next(ctx context.Context) ([]json.RawMessage, error) {
	if state := s.State(); state != StateListening {
		if state == StateFailed {
			return nil, &rpc.Error{Kind: rpc.KindConnection, Err: net.ErrClosed}
		}
		return nil, ErrDone
	}

	_ = s.conn.SetReadDeadline(s.deadline)
	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, s.readFailed(ctx, err)
	}
	if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
		s.terminate(StateFailed, TerminationNone)
		return nil, &rpc.Error{Kind: rpc.KindDecode, Err: fmt.Errorf("%w: type=%d", ErrUnexpectedFrame, msgType)}
	}

	text, err := rpc.DecodeReply(http.StatusOK, data)
	if err != nil {
		s.terminate(StateFailed, TerminationNone)
		return nil, err
	}
	batch, err := DecodeBatch([]byte(text))
	if err != nil {
		s.terminate(StateFailed, TerminationNone)
		return nil, &rpc.Error{Kind: rpc.KindDecode, Err: err}
	}
	if len(batch) == 0 {
		log.Debug().Str("payloadtype", s.payloadType).Msg("pubsub.Session.Next empty batch")
		s.closeGracefully()
		s.terminate(StateClosed, TerminationClosed)
		return nil, ErrDone
	}
	observability.RecordPubSubBatch(s.payloadType)
	return batch, nil
}

// Drain stops a listening session at the consumer's request.
func (s *Session) Drain() {
	if s.State() != StateListening {
		return
	}
	s.setState(StateDraining)
	s.closeGracefully()
	s.terminate(StateClosed, TerminationDrained)
}

// Close releases the socket. A session closed while still listening is
// reported as drained.
func (s *Session) Close() error {
	if !s.State().Terminal() {
		s.Drain()
	}
	s.release()
	return nil
}

// Batches adapts the session to a range-over-func iterator. Breaking out of
// the loop drains the session.
func (s *Session) Batches(ctx context.Context) iter.Seq2[[]json.RawMessage, error] {
	return func(yield func([]json.RawMessage, error) bool) {
		for {
			batch, err := s.Next(ctx)
			if errors.Is(err, ErrDone) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(batch, nil) {
				s.Drain()
				return
			}
		}
	}
}

func (s *Session) readFailed(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		s.terminate(StateFailed, TerminationNone)
		return &rpc.Error{Kind: rpc.KindConnection, Err: ctx.Err()}
	}
	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || s.expired() {
		log.Debug().Str("payloadtype", s.payloadType).Msg("pubsub.Session.Next deadline reached")
		s.terminate(StateTimedOut, TerminationTimedOut)
		return ErrDone
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		s.terminate(StateClosed, TerminationClosed)
		return ErrDone
	}
	s.terminate(StateFailed, TerminationNone)
	return &rpc.Error{Kind: rpc.KindConnection, Err: err}
}

func (s *Session) closeGracefully() {
	if s.conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
}

func (s *Session) terminate(state State, termination Termination) {
	s.finish(state, termination)
	s.release()
}

func (s *Session) release() {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Session) finish(state State, termination Termination) {
	s.mu.Lock()
	s.state = state
	s.termination = termination
	record := !s.recorded
	s.recorded = true
	s.mu.Unlock()

	if !record {
		return
	}
	label := termination.String()
	if state == StateFailed {
		label = StateFailed.String()
	}
	observability.RecordPubSubSession(s.payloadType, label)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) expired() bool {
	return !time.Now().Before(s.deadline)
}

// DecodeBatch splits a reply payload into records: an array is a batch, an
// object is a batch of one, and null or empty text is an empty batch.
func DecodeBatch(payload []byte) ([]json.RawMessage, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	switch payload[0] {
	case '[':
		var batch []json.RawMessage
		if err := json.Unmarshal(payload, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	case '{':
		if !json.Valid(payload) {
			return nil, fmt.Errorf("%w: invalid object", ErrUnexpectedFrame)
		}
		return []json.RawMessage{json.RawMessage(payload)}, nil
	default:
		return nil, fmt.Errorf("%w: payload is not an object or array", ErrUnexpectedFrame)
	}
}
