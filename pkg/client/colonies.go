package client

import (
	"context"

	"github.com/danmuck/colonies/pkg/core"
)

// AddColony is signed with the server key.
func (c *Client) AddColony(ctx context.Context, colony core.Colony, prvKey string) (core.Colony, error) {
	var out core.Colony
	msg := ColonyMsg{MsgType: AddColonyPayloadType, Colony: colony}
	err := c.call(ctx, AddColonyPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) RemoveColony(ctx context.Context, colonyName string, prvKey string) error {
	msg := ColonyNameMsg{MsgType: RemoveColonyPayloadType, ColonyName: colonyName}
	return c.call(ctx, RemoveColonyPayloadType, msg, prvKey, nil)
}

func (c *Client) GetColony(ctx context.Context, colonyName string, prvKey string) (core.Colony, error) {
	var out core.Colony
	msg := ColonyNameMsg{MsgType: GetColonyPayloadType, ColonyName: colonyName}
	err := c.call(ctx, GetColonyPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetColonies(ctx context.Context, prvKey string) ([]core.Colony, error) {
	var out []core.Colony
	msg := EmptyMsg{MsgType: GetColoniesPayloadType}
	if err := c.call(ctx, GetColoniesPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) GetStatistics(ctx context.Context, colonyName string, prvKey string) (core.Statistics, error) {
	var out core.Statistics
	msg := ColonyNameMsg{MsgType: GetStatisticsPayloadType, ColonyName: colonyName}
	err := c.call(ctx, GetStatisticsPayloadType, msg, prvKey, &out)
	return out, err
}

// AddExecutor registers an executor in PENDING state; it is signed with the
// colony key.
func (c *Client) AddExecutor(ctx context.Context, executor core.Executor, prvKey string) (core.Executor, error) {
	var out core.Executor
	msg := ExecutorMsg{MsgType: AddExecutorPayloadType, Executor: executor}
	err := c.call(ctx, AddExecutorPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) ApproveExecutor(ctx context.Context, colonyName, executorName string, prvKey string) error {
	return c.executorAction(ctx, ApproveExecutorPayloadType, colonyName, executorName, prvKey)
}

func (c *Client) RejectExecutor(ctx context.Context, colonyName, executorName string, prvKey string) error {
	return c.executorAction(ctx, RejectExecutorPayloadType, colonyName, executorName, prvKey)
}

func (c *Client) RemoveExecutor(ctx context.Context, colonyName, executorName string, prvKey string) error {
	return c.executorAction(ctx, RemoveExecutorPayloadType, colonyName, executorName, prvKey)
}

func (c *Client) GetExecutor(ctx context.Context, colonyName, executorName string, prvKey string) (core.Executor, error) {
	var out core.Executor
	msg := ExecutorNameMsg{MsgType: GetExecutorPayloadType, ColonyName: colonyName, ExecutorName: executorName}
	err := c.call(ctx, GetExecutorPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetExecutors(ctx context.Context, colonyName string, prvKey string) ([]core.Executor, error) {
	var out []core.Executor
	msg := ColonyNameMsg{MsgType: GetExecutorsPayloadType, ColonyName: colonyName}
	if err := c.call(ctx, GetExecutorsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) executorAction(ctx context.Context, payloadType, colonyName, executorName string, prvKey string) error {
	msg := ExecutorNameMsg{MsgType: payloadType, ColonyName: colonyName, ExecutorName: executorName}
	return c.call(ctx, payloadType, msg, prvKey, nil)
}
