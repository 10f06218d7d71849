package client

import (
	"context"
	"time"

	"github.com/danmuck/colonies/pkg/core"
)

// LogQuery selects logs by process or by executor. Since is a unix
// nanosecond timestamp; zero means from the beginning.
type LogQuery struct {
	ColonyName   string
	ProcessID    string
	ExecutorName string
	Count        int
	Since        time.Time
}

func (c *Client) AddLog(ctx context.Context, processID, message string, prvKey string) error {
	msg := AddLogMsg{MsgType: AddLogPayloadType, ProcessID: processID, Message: message}
	return c.call(ctx, AddLogPayloadType, msg, prvKey, nil)
}

func (c *Client) GetLogs(ctx context.Context, q LogQuery, prvKey string) ([]core.Log, error) {
	var since int64
	if !q.Since.IsZero() {
		since = q.Since.UnixNano()
	}
	msg := GetLogsMsg{
		MsgType:      GetLogsPayloadType,
		ColonyName:   q.ColonyName,
		ProcessID:    q.ProcessID,
		ExecutorName: q.ExecutorName,
		Count:        q.Count,
		Since:        since,
	}
	var out []core.Log
	if err := c.call(ctx, GetLogsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

// ChannelAppend adds one entry to a process channel. inReplyTo is zero for a
// message that answers nothing.
func (c *Client) ChannelAppend(ctx context.Context, processID, name, data, entryType string, inReplyTo int64, prvKey string) error {
	msg := ChannelAppendMsg{
		MsgType:   ChannelAppendPayloadType,
		ProcessID: processID,
		Name:      name,
		Data:      data,
		Type:      entryType,
		InReplyTo: inReplyTo,
	}
	return c.call(ctx, ChannelAppendPayloadType, msg, prvKey, nil)
}

// ChannelRead returns up to limit entries with a sequence above afterSeq.
func (c *Client) ChannelRead(ctx context.Context, processID, name string, afterSeq int64, limit int, prvKey string) ([]core.ChannelEntry, error) {
	msg := ChannelReadMsg{
		MsgType:   ChannelReadPayloadType,
		ProcessID: processID,
		Name:      name,
		AfterSeq:  afterSeq,
		Limit:     limit,
	}
	var out []core.ChannelEntry
	if err := c.call(ctx, ChannelReadPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}
