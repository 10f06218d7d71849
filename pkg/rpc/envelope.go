package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/colonies/pkg/crypto"
)

// Envelope is the signed request body.
type Envelope struct {
	Signature   string `json:"signature"`
	PayloadType string `json:"payloadtype"`
	Payload     string `json:"payload"`
}

// ReplyEnvelope is the reply body and the shape of every streamed frame.
type ReplyEnvelope struct {
	PayloadType string `json:"payloadtype"`
	Payload     string `json:"payload"`
	Error       bool   `json:"error"`
}

// Failure is carried base64 encoded inside a rejected reply.
type Failure struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Verified is an inbound envelope after signature recovery.
type Verified struct {
	Envelope Envelope
	JSON     []byte
	Identity string
}

type msgTypeHeader struct {
	MsgType string `json:"msgtype"`
}

// Compose signs msg and returns the JSON request body.
// The signature covers the base64 payload text, not the raw JSON.
func Compose(payloadType string, msg any, prvKey string) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, decodeError(fmt.Errorf("marshal %s: %w", payloadType, err))
	}
	if err := checkMsgType(payloadType, data); err != nil {
		return nil, err
	}

	payload := base64.StdEncoding.EncodeToString(data)
	signature, err := crypto.GenerateSignature(payload, prvKey)
	if err != nil {
		return nil, decodeError(err)
	}
	body, err := json.Marshal(Envelope{
		Signature:   signature,
		PayloadType: payloadType,
		Payload:     payload,
	})
	if err != nil {
		return nil, decodeError(err)
	}
	return body, nil
}

// Decompose parses a request body the way the server does: it decodes the
// payload, checks the inner msgtype and recovers the signer identity.
func Decompose(body []byte) (Verified, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Verified{}, decodeError(fmt.Errorf("request envelope: %w", err))
	}
	data, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return Verified{}, decodeError(fmt.Errorf("request payload: %w", err))
	}
	if err := checkMsgType(env.PayloadType, data); err != nil {
		return Verified{}, err
	}
	id, err := crypto.RecoverID(env.Payload, env.Signature)
	if err != nil {
		return Verified{}, decodeError(err)
	}
	return Verified{Envelope: env, JSON: data, Identity: id}, nil
}

// EncodeReply builds a successful reply envelope around v.
func EncodeReply(payloadType string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, decodeError(err)
	}
	return json.Marshal(ReplyEnvelope{
		PayloadType: payloadType,
		Payload:     base64.StdEncoding.EncodeToString(data),
	})
}

// EncodeFailure builds a rejected reply envelope.
func EncodeFailure(status int, message string) ([]byte, error) {
	data, err := json.Marshal(Failure{Status: status, Message: message})
	if err != nil {
		return nil, decodeError(err)
	}
	return json.Marshal(ReplyEnvelope{
		PayloadType: "error",
		Payload:     base64.StdEncoding.EncodeToString(data),
		Error:       true,
	})
}

// DecodeReply classifies a reply body received with the given HTTP status and
// returns the decoded payload text on success.
func DecodeReply(status int, body []byte) (string, error) {
	ok := status == http.StatusOK

	var reply ReplyEnvelope
	if err := json.Unmarshal(body, &reply); err != nil {
		if !ok {
			return "", &Error{Kind: KindApplication, Status: status, Message: statusMessage(status), Err: err}
		}
		return "", decodeError(fmt.Errorf("reply envelope: %w", err))
	}
	raw, err := base64.StdEncoding.DecodeString(reply.Payload)
	if err != nil {
		if !ok {
			return "", &Error{Kind: KindApplication, Status: status, Message: statusMessage(status), Err: err}
		}
		return "", decodeError(fmt.Errorf("reply payload: %w", err))
	}
	if !utf8.Valid(raw) {
		err := fmt.Errorf("reply payload: invalid utf-8")
		if !ok {
			return "", &Error{Kind: KindApplication, Status: status, Message: statusMessage(status), Err: err}
		}
		return "", decodeError(err)
	}
	if ok && !reply.Error {
		return string(raw), nil
	}

	var failure Failure
	if err := json.Unmarshal(raw, &failure); err != nil {
		msg := strings.TrimSpace(string(raw))
		if !ok || msg == "" {
			msg = statusMessage(status)
		}
		return "", &Error{Kind: KindApplication, Status: status, Message: msg, Err: err}
	}
	if failure.Status == 0 {
		failure.Status = status
	}
	return "", &Error{Kind: KindApplication, Status: failure.Status, Message: failure.Message}
}

func checkMsgType(payloadType string, data []byte) error {
	var head msgTypeHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return decodeError(fmt.Errorf("%s payload: %w", payloadType, err))
	}
	if head.MsgType != payloadType {
		return decodeError(fmt.Errorf("%w: payloadtype=%q msgtype=%q", ErrMsgTypeMismatch, payloadType, head.MsgType))
	}
	return nil
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("status %d", status)
}
