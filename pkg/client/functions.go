package client

import (
	"context"

	"github.com/danmuck/colonies/pkg/core"
)

func (c *Client) AddFunction(ctx context.Context, fn core.Function, prvKey string) (core.Function, error) {
	var out core.Function
	msg := FunctionMsg{MsgType: AddFunctionPayloadType, Function: fn}
	err := c.call(ctx, AddFunctionPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetFunctions(ctx context.Context, colonyName string, prvKey string) ([]core.Function, error) {
	return c.GetFunctionsByExecutor(ctx, colonyName, "", prvKey)
}

func (c *Client) GetFunctionsByExecutor(ctx context.Context, colonyName, executorName string, prvKey string) ([]core.Function, error) {
	var out []core.Function
	msg := GetFunctionsMsg{MsgType: GetFunctionsPayloadType, ColonyName: colonyName, ExecutorName: executorName}
	if err := c.call(ctx, GetFunctionsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) RemoveFunction(ctx context.Context, functionID string, prvKey string) error {
	msg := FunctionIDMsg{MsgType: RemoveFunctionPayloadType, FunctionID: functionID}
	return c.call(ctx, RemoveFunctionPayloadType, msg, prvKey, nil)
}
