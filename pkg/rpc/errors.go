package rpc

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed exchange so callers can decide whether to retry.
type Kind int

const (
	KindDecode Kind = iota + 1
	KindConnection
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindConnection:
		return "connection"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

var (
	ErrDecode      = errors.New("rpc: decode failed")
	ErrConnection  = errors.New("rpc: connection failed")
	ErrApplication = errors.New("rpc: request rejected")

	ErrMsgTypeMismatch = errors.New("rpc: msgtype mismatch")
)

// Error is returned by every failed Send, Call and subscription.
// Application errors print the server message verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindApplication:
		if strings.TrimSpace(e.Message) != "" {
			return e.Message
		}
		return fmt.Sprintf("%s: status=%d", ErrApplication, e.Status)
	case KindConnection:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", ErrConnection, e.Err)
		}
		return ErrConnection.Error()
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
		}
		return ErrDecode.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the class sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrApplication:
		return e.Kind == KindApplication
	}
	return false
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

func IsApplicationError(err error) bool {
	return errors.Is(err, ErrApplication)
}

func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Outcome maps err onto a metrics label.
func Outcome(err error) string {
	var rpcErr *Error
	if err == nil {
		return "ok"
	}
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind.String()
	}
	return KindDecode.String()
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Err: err}
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Err: err}
}
