// Package client maps every colonies server operation onto a typed method.
//
// Each method builds the message for one payload type, signs it with the
// caller's key and decodes the reply into a pkg/core value. Methods take ctx
// first and the signing key last; nothing here retries.
package client

import (
	"context"
	"time"

	"github.com/danmuck/colonies/pkg/rpc"
)

type Client struct {
	rpc *rpc.Client
}

func New(cfg rpc.Config) (*Client, error) {
	c, err := rpc.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithRPC(c), nil
}

func NewWithRPC(c *rpc.Client) *Client {
	return &Client{rpc: c}
}

// RPC exposes the envelope client for payload types not wrapped here.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

func (c *Client) call(ctx context.Context, payloadType string, msg any, prvKey string, out any) error {
	return c.rpc.CallInto(ctx, payloadType, msg, prvKey, out)
}

// callWithin gives the server up to wait to answer on top of the normal
// request timeout.
func (c *Client) callWithin(ctx context.Context, wait time.Duration, payloadType string, msg any, prvKey string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, wait+c.rpc.Config().RequestTimeout)
	defer cancel()
	return c.call(ctx, payloadType, msg, prvKey, out)
}

// list turns a null reply into an empty slice.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	s := int(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return s
}
