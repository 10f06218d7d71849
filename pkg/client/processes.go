package client

import (
	"context"
	"time"

	"github.com/danmuck/colonies/pkg/core"
)

func (c *Client) Submit(ctx context.Context, spec core.FunctionSpec, prvKey string) (core.Process, error) {
	var out core.Process
	msg := FunctionSpecMsg{MsgType: SubmitFunctionSpecPayloadType, Spec: spec}
	err := c.call(ctx, SubmitFunctionSpecPayloadType, msg, prvKey, &out)
	return out, err
}

// Assign asks for the next waiting process, letting the server hold the
// request open for up to timeout. An application error with no process
// means nothing was assigned in time.
func (c *Client) Assign(ctx context.Context, colonyName string, timeout time.Duration, prvKey string) (core.Process, error) {
	var out core.Process
	msg := AssignProcessMsg{MsgType: AssignProcessPayloadType, ColonyName: colonyName, Timeout: seconds(timeout)}
	err := c.callWithin(ctx, timeout, AssignProcessPayloadType, msg, prvKey, &out)
	return out, err
}

// Close marks processID successful without output.
func (c *Client) Close(ctx context.Context, processID string, prvKey string) error {
	return c.CloseWithOutput(ctx, processID, nil, prvKey)
}

func (c *Client) CloseWithOutput(ctx context.Context, processID string, output []any, prvKey string) error {
	msg := CloseSuccessfulMsg{MsgType: CloseSuccessfulPayloadType, ProcessID: processID, Output: output}
	return c.call(ctx, CloseSuccessfulPayloadType, msg, prvKey, nil)
}

func (c *Client) Fail(ctx context.Context, processID string, errs []string, prvKey string) error {
	msg := CloseFailedMsg{MsgType: CloseFailedPayloadType, ProcessID: processID, Errors: errs}
	return c.call(ctx, CloseFailedPayloadType, msg, prvKey, nil)
}

func (c *Client) SetOutput(ctx context.Context, processID string, output []any, prvKey string) error {
	if output == nil {
		output = []any{}
	}
	msg := SetOutputMsg{MsgType: SetOutputPayloadType, ProcessID: processID, Output: output}
	return c.call(ctx, SetOutputPayloadType, msg, prvKey, nil)
}

func (c *Client) GetProcess(ctx context.Context, processID string, prvKey string) (core.Process, error) {
	var out core.Process
	msg := ProcessIDMsg{MsgType: GetProcessPayloadType, ProcessID: processID}
	err := c.call(ctx, GetProcessPayloadType, msg, prvKey, &out)
	return out, err
}

// GetProcesses lists up to count processes of colonyName in state.
func (c *Client) GetProcesses(ctx context.Context, colonyName string, state, count int, prvKey string) ([]core.Process, error) {
	var out []core.Process
	msg := QueryMsg{MsgType: GetProcessesPayloadType, ColonyName: colonyName, Count: count, State: state}
	if err := c.call(ctx, GetProcessesPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) RemoveProcess(ctx context.Context, processID string, prvKey string) error {
	msg := ProcessIDMsg{MsgType: RemoveProcessPayloadType, ProcessID: processID}
	return c.call(ctx, RemoveProcessPayloadType, msg, prvKey, nil)
}

// RemoveAllProcesses removes every process of colonyName in state; pass
// core.Unlimited to ignore the state.
func (c *Client) RemoveAllProcesses(ctx context.Context, colonyName string, state int, prvKey string) error {
	msg := ColonyStateMsg{MsgType: RemoveAllProcessesPayloadType, ColonyName: colonyName, State: state}
	return c.call(ctx, RemoveAllProcessesPayloadType, msg, prvKey, nil)
}

func (c *Client) AddAttribute(ctx context.Context, attr core.Attribute, prvKey string) (core.Attribute, error) {
	var out core.Attribute
	msg := AttributeMsg{MsgType: AddAttributePayloadType, Attribute: attr}
	err := c.call(ctx, AddAttributePayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) SubmitWorkflow(ctx context.Context, spec core.WorkflowSpec, prvKey string) (core.ProcessGraph, error) {
	var out core.ProcessGraph
	msg := WorkflowSpecMsg{MsgType: SubmitWorkflowSpecPayloadType, Spec: spec}
	err := c.call(ctx, SubmitWorkflowSpecPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetProcessGraph(ctx context.Context, processGraphID string, prvKey string) (core.ProcessGraph, error) {
	var out core.ProcessGraph
	msg := ProcessGraphIDMsg{MsgType: GetProcessGraphPayloadType, ProcessGraphID: processGraphID}
	err := c.call(ctx, GetProcessGraphPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetProcessGraphs(ctx context.Context, colonyName string, state, count int, prvKey string) ([]core.ProcessGraph, error) {
	var out []core.ProcessGraph
	msg := QueryMsg{MsgType: GetProcessGraphsPayloadType, ColonyName: colonyName, Count: count, State: state}
	if err := c.call(ctx, GetProcessGraphsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) RemoveProcessGraph(ctx context.Context, processGraphID string, prvKey string) error {
	msg := ProcessGraphIDMsg{MsgType: RemoveProcessGraphPayloadType, ProcessGraphID: processGraphID}
	return c.call(ctx, RemoveProcessGraphPayloadType, msg, prvKey, nil)
}

func (c *Client) RemoveAllProcessGraphs(ctx context.Context, colonyName string, state int, prvKey string) error {
	msg := ColonyStateMsg{MsgType: RemoveAllProcessGraphsPayloadType, ColonyName: colonyName, State: state}
	return c.call(ctx, RemoveAllProcessGraphsPayloadType, msg, prvKey, nil)
}
