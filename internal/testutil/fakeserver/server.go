// Package fakeserver is a scripted test server that verifies signed envelopes
// the way a real colonies server does before dispatching them to handlers.
package fakeserver

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/colonies/internal/auth"
	"github.com/danmuck/colonies/internal/observability"
	"github.com/danmuck/colonies/pkg/rpc"
)

const nodeName = "fakeserver"

// HandlerFunc answers one request. Returning an *rpc.Error replies with its
// status and message; any other error replies 400.
type HandlerFunc func(req rpc.Verified) (any, error)

// StreamFunc drives one subscription after its request was verified.
type StreamFunc func(req rpc.Verified, stream *Stream)

type Server struct {
	// URL is the api endpoint, e.g. http://127.0.0.1:1234/api.
	URL string

	http     *httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	handlers   map[string]HandlerFunc
	streams    map[string]StreamFunc
	validators map[string]auth.Validator
	requests   []rpc.Verified
}

func New(t testing.TB) *Server {
	t.Helper()
	s := newServer()
	s.http = httptest.NewServer(s.routes())
	s.URL = s.http.URL + "/api"
	t.Cleanup(s.Close)
	return s
}

// NewTLS serves https and wss with cfg.
func NewTLS(t testing.TB, cfg *tls.Config) *Server {
	t.Helper()
	s := newServer()
	s.http = httptest.NewUnstartedServer(s.routes())
	s.http.TLS = cfg
	s.http.StartTLS()
	s.URL = s.http.URL + "/api"
	t.Cleanup(s.Close)
	return s
}

func newServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		handlers:   make(map[string]HandlerFunc),
		streams:    make(map[string]StreamFunc),
		validators: make(map[string]auth.Validator),
	}
}

func (s *Server) routes() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.AccessLog(log.Logger))
	r.Use(observability.HTTPMetrics(nodeName))
	r.POST("/api", s.handleRPC)
	r.GET("/pubsub", s.handleStream)
	return r
}

func (s *Server) Close() {
	if s.http != nil {
		s.http.CloseClientConnections()
		s.http.Close()
	}
}

// Config returns an rpc.Config aimed at this server.
func (s *Server) Config() rpc.Config {
	cfg := rpc.DefaultConfig()
	cfg.ServerURL = s.URL
	cfg.StreamGrace = 500 * time.Millisecond
	return cfg
}

func (s *Server) Handle(payloadType string, h HandlerFunc) {
	s.mu.Lock()
	s.handlers[payloadType] = h
	s.mu.Unlock()
}

func (s *Server) HandleStream(payloadType string, h StreamFunc) {
	s.mu.Lock()
	s.streams[payloadType] = h
	s.mu.Unlock()
}

// Require rejects payloadType requests whose signer v does not accept.
func (s *Server) Require(payloadType string, v auth.Validator) {
	s.mu.Lock()
	s.validators[payloadType] = v
	s.mu.Unlock()
}

// Requests returns every verified request in arrival order.
func (s *Server) Requests() []rpc.Verified {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rpc.Verified, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent verified request of payloadType.
func (s *Server) Last(payloadType string) (rpc.Verified, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Envelope.PayloadType == payloadType {
			return s.requests[i], true
		}
	}
	return rpc.Verified{}, false
}

// Count returns how many verified requests of payloadType arrived.
func (s *Server) Count(payloadType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Envelope.PayloadType == payloadType {
			n++
		}
	}
	return n
}

// Bind decodes the verified payload into T.
func Bind[T any](req rpc.Verified) (T, error) {
	var v T
	err := json.Unmarshal(req.JSON, &v)
	return v, err
}

// Reject builds a handler error carrying status and message.
func Reject(status int, message string) error {
	return &rpc.Error{Kind: rpc.KindApplication, Status: status, Message: message}
}

func (s *Server) handleRPC(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeFailure(c, http.StatusBadRequest, err.Error())
		return
	}
	req, status, err := s.verify(body)
	if err != nil {
		writeFailure(c, status, err.Error())
		return
	}

	s.mu.Lock()
	h, ok := s.handlers[req.Envelope.PayloadType]
	s.mu.Unlock()
	if !ok {
		writeFailure(c, http.StatusBadRequest, fmt.Sprintf("unsupported payload type %q", req.Envelope.PayloadType))
		return
	}

	out, err := h(req)
	if err != nil {
		status, msg := failureFor(err)
		writeFailure(c, status, msg)
		return
	}
	reply, err := rpc.EncodeReply(req.Envelope.PayloadType, out)
	if err != nil {
		writeFailure(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", reply)
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("fakeserver.Server.handleStream upgrade")
		return
	}
	defer conn.Close()

	_, body, err := conn.ReadMessage()
	if err != nil {
		return
	}
	stream := &Stream{conn: conn}
	req, status, err := s.verify(body)
	if err != nil {
		_ = stream.Fail(status, err.Error())
		return
	}
	stream.payloadType = req.Envelope.PayloadType

	s.mu.Lock()
	h, ok := s.streams[req.Envelope.PayloadType]
	s.mu.Unlock()
	if !ok {
		_ = stream.Fail(http.StatusBadRequest, fmt.Sprintf("unsupported payload type %q", req.Envelope.PayloadType))
		return
	}
	h(req, stream)
}

func (s *Server) verify(body []byte) (rpc.Verified, int, error) {
	req, err := rpc.Decompose(body)
	if err != nil {
		return rpc.Verified{}, http.StatusBadRequest, err
	}
	s.mu.Lock()
	v := s.validators[req.Envelope.PayloadType]
	s.mu.Unlock()
	if v != nil {
		if err := v.Validate(req.Identity); err != nil {
			return rpc.Verified{}, http.StatusForbidden, fmt.Errorf("%w: identity %s", err, req.Identity)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return req, http.StatusOK, nil
}

func failureFor(err error) (int, string) {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Status != 0 {
		return rpcErr.Status, rpcErr.Message
	}
	return http.StatusBadRequest, err.Error()
}

func writeFailure(c *gin.Context, status int, message string) {
	reply, err := rpc.EncodeFailure(status, message)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json", reply)
}
