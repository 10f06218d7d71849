package client

import (
	"context"
	"time"

	"github.com/danmuck/colonies/pkg/core"
	"github.com/danmuck/colonies/pkg/pubsub"
)

// SubscribeProcesses waits up to timeout for a process of executorType to
// reach state and stops at the first batch. An empty Records with a
// Closed or TimedOut termination means nothing happened in time.
func (c *Client) SubscribeProcesses(ctx context.Context, colonyName, executorType string, state int, timeout time.Duration, prvKey string) (pubsub.Result[core.Process], error) {
	msg := SubscribeProcessesMsg{
		MsgType:      SubscribeProcessesPayloadType,
		ColonyName:   colonyName,
		ExecutorType: executorType,
		State:        state,
		Timeout:      seconds(timeout),
	}
	return pubsub.Subscribe(ctx, c.rpc, subscription(SubscribeProcessesPayloadType, msg, timeout, prvKey), firstBatch[core.Process])
}

// SubscribeProcess waits up to timeout for one process to reach state.
func (c *Client) SubscribeProcess(ctx context.Context, process core.Process, state int, timeout time.Duration, prvKey string) (pubsub.Result[core.Process], error) {
	msg := SubscribeProcessMsg{
		MsgType:      SubscribeProcessPayloadType,
		ColonyName:   process.Spec.Conditions.ColonyName,
		ProcessID:    process.ProcessID,
		ExecutorType: process.Spec.Conditions.ExecutorType,
		State:        state,
		Timeout:      seconds(timeout),
	}
	return pubsub.Subscribe(ctx, c.rpc, subscription(SubscribeProcessPayloadType, msg, timeout, prvKey), firstBatch[core.Process])
}

// SubscribeChannel streams entries after afterSeq to consumer until it
// returns false, the server closes the stream or timeout expires.
func (c *Client) SubscribeChannel(ctx context.Context, processID, name string, afterSeq int64, timeout time.Duration, prvKey string, consumer func([]core.ChannelEntry) bool) (pubsub.Result[core.ChannelEntry], error) {
	msg := SubscribeChannelMsg{
		MsgType:   SubscribeChannelPayloadType,
		ProcessID: processID,
		Name:      name,
		AfterSeq:  afterSeq,
		Timeout:   seconds(timeout),
	}
	return pubsub.Subscribe(ctx, c.rpc, subscription(SubscribeChannelPayloadType, msg, timeout, prvKey), consumer)
}

func subscription(payloadType string, msg any, timeout time.Duration, prvKey string) pubsub.Request {
	return pubsub.Request{PayloadType: payloadType, Msg: msg, PrvKey: prvKey, Timeout: timeout}
}

func firstBatch[T any]([]T) bool { return false }
