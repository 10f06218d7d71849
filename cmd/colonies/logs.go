package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/client"
)

var (
	logProcessID string
	logExecutor  string
	logCount     int
	logSince     time.Duration

	channelType      string
	channelInReplyTo int64
	channelAfter     int64
	channelLimit     int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "add and read process logs",
}

var logAddCmd = &cobra.Command{
	Use:   "add <processid> <message>",
	Short: "append a log line to a running process",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := userKey()
		if err != nil {
			return err
		}
		if err := c.AddLog(cmd.Context(), args[0], args[1], prvKey); err != nil {
			return err
		}
		done("logged to %s", args[0])
		return nil
	},
}

var logGetCmd = &cobra.Command{
	Use:   "get",
	Short: "read logs by process or executor",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		q := client.LogQuery{
			ColonyName:   colony,
			ProcessID:    logProcessID,
			ExecutorName: logExecutor,
			Count:        logCount,
		}
		if logSince > 0 {
			q.Since = time.Now().Add(-logSince)
		}
		logs, err := c.GetLogs(cmd.Context(), q, prvKey)
		if err != nil {
			return err
		}
		return renderLogs(logs)
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "append to and read process channels",
}

var channelAppendCmd = &cobra.Command{
	Use:   "append <processid> <channel> <data>",
	Short: "append one entry to a process channel",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := userKey()
		if err != nil {
			return err
		}
		if err := c.ChannelAppend(cmd.Context(), args[0], args[1], args[2], channelType, channelInReplyTo, prvKey); err != nil {
			return err
		}
		done("appended to %s/%s", args[0], args[1])
		return nil
	},
}

var channelReadCmd = &cobra.Command{
	Use:   "read <processid> <channel>",
	Short: "read channel entries after a sequence number",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := userKey()
		if err != nil {
			return err
		}
		entries, err := c.ChannelRead(cmd.Context(), args[0], args[1], channelAfter, channelLimit, prvKey)
		if err != nil {
			return err
		}
		return renderEntries(entries)
	},
}

func init() {
	logGetCmd.Flags().StringVar(&logProcessID, "process", "", "process id")
	logGetCmd.Flags().StringVar(&logExecutor, "executor", "", "executor name")
	logGetCmd.Flags().IntVar(&logCount, "count", 100, "max log lines")
	logGetCmd.Flags().DurationVar(&logSince, "since", 0, "only logs newer than this")
	logCmd.AddCommand(logAddCmd, logGetCmd)

	channelAppendCmd.Flags().StringVar(&channelType, "type", "", "entry type")
	channelAppendCmd.Flags().Int64Var(&channelInReplyTo, "reply-to", 0, "sequence this entry replies to")
	channelReadCmd.Flags().Int64Var(&channelAfter, "after", 0, "read entries after this sequence")
	channelReadCmd.Flags().IntVar(&channelLimit, "limit", 100, "max entries")
	channelCmd.AddCommand(channelAppendCmd, channelReadCmd)
}
