package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/core"
)

var (
	subscribeTimeout      time.Duration
	subscribeState        string
	subscribeExecutorType string
	subscribeAfter        int64
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "wait for process and channel events",
}

var subscribeProcessesCmd = &cobra.Command{
	Use:   "processes",
	Short: "wait for a process of --type to enter --state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		state, err := parseState(subscribeState)
		if err != nil {
			return err
		}
		res, err := c.SubscribeProcesses(cmd.Context(), colony, subscribeExecutorType, state, subscribeTimeout, prvKey)
		if err != nil {
			return err
		}
		pterm.Debug.Printfln("subscription ended: %s", res.Termination)
		return renderProcesses(res.Records)
	},
}

var subscribeProcessCmd = &cobra.Command{
	Use:   "process <processid>",
	Short: "wait for one process to enter --state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := userKey()
		if err != nil {
			return err
		}
		state, err := parseState(subscribeState)
		if err != nil {
			return err
		}
		proc, err := c.GetProcess(cmd.Context(), args[0], prvKey)
		if err != nil {
			return err
		}
		if proc.State == state {
			return renderProcess(proc)
		}
		res, err := c.SubscribeProcess(cmd.Context(), proc, state, subscribeTimeout, prvKey)
		if err != nil {
			return err
		}
		return renderProcesses(res.Records)
	},
}

var subscribeChannelCmd = &cobra.Command{
	Use:   "channel <processid> <channel>",
	Short: "follow a process channel until it closes or --wait",
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
		streaming := flags.Output == outputTable
		res, err := c.SubscribeChannel(cmd.Context(), args[0], args[1], subscribeAfter, subscribeTimeout, prvKey,
			func(batch []core.ChannelEntry) bool {
				if streaming {
					for _, e := range batch {
						pterm.Printfln("%d %s", e.Sequence, e.Data)
					}
				}
				return true
			})
		if err != nil {
			return err
		}
		if streaming {
			pterm.Debug.Printfln("subscription ended: %s", res.Termination)
			return nil
		}
		return renderEntries(res.Records)
	},
}

func init() {
	subscribeCmd.PersistentFlags().DurationVar(&subscribeTimeout, "wait", 30*time.Second, "how long to wait")
	subscribeProcessesCmd.Flags().StringVar(&subscribeState, "state", "waiting", "waiting|running|successful|failed")
	subscribeProcessesCmd.Flags().StringVar(&subscribeExecutorType, "type", "cli", "executor type")
	subscribeProcessCmd.Flags().StringVar(&subscribeState, "state", "successful", "waiting|running|successful|failed")
	subscribeChannelCmd.Flags().Int64Var(&subscribeAfter, "after", 0, "start after this sequence")
	subscribeCmd.AddCommand(subscribeProcessesCmd, subscribeProcessCmd, subscribeChannelCmd)
}
