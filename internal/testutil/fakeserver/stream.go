package fakeserver

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danmuck/colonies/pkg/rpc"
)

// Stream is the server side of one subscription.
type Stream struct {
	conn        *websocket.Conn
	payloadType string
}

// Send writes v as one reply frame.
func (s *Stream) Send(v any) error {
	frame, err := rpc.EncodeReply(s.payloadType, v)
	if err != nil {
		return err
	}
	return s.SendRaw(frame)
}

// SendRaw writes frame unchanged.
func (s *Stream) SendRaw(frame []byte) error {
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Fail writes an error frame.
func (s *Stream) Fail(status int, message string) error {
	frame, err := rpc.EncodeFailure(status, message)
	if err != nil {
		return err
	}
	return s.SendRaw(frame)
}

// Close sends a normal close frame.
func (s *Stream) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// Drop closes the connection without a close frame, as a crashed server would.
func (s *Stream) Drop() error {
	return s.conn.NetConn().Close()
}

// Wait blocks until the client goes away or d elapses. It reports whether
// the client disconnected first.
func (s *Stream) Wait(d time.Duration) bool {
	_ = s.conn.SetReadDeadline(time.Now().Add(d))
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return !isTimeout(err)
		}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
