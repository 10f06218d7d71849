package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/core"
)

var (
	submitSpecPath     string
	submitFuncName     string
	submitExecutorType string
	submitMaxWait      int
	submitMaxExec      int
	submitMaxRetries   int
	submitPriority     int
	submitWait         time.Duration

	processListState string
	processListCount int
	processOutput    []string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "submit and manage processes",
}

var processSubmitCmd = &cobra.Command{
	Use:   "submit [args...]",
	Short: "submit a function spec from --spec or from --func and positional args",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		spec, err := buildSpec(colony, args)
		if err != nil {
			return err
		}
		proc, err := c.Submit(cmd.Context(), spec, prvKey)
		if err != nil {
			return err
		}
		if submitWait <= 0 {
			return renderProcess(proc)
		}

		res, err := c.SubscribeProcess(cmd.Context(), proc, core.SUCCESS, submitWait, prvKey)
		if err != nil {
			return err
		}
		if len(res.Records) == 0 {
			// a failed process never reaches SUCCESS; show whatever state it is in
			if latest, err := c.GetProcess(cmd.Context(), proc.ProcessID, prvKey); err == nil {
				return renderProcess(latest)
			}
			return fmt.Errorf("process %s not finished: %s", proc.ProcessID, res.Termination)
		}
		return renderProcess(res.Records[0])
	},
}

func buildSpec(colony string, args []string) (core.FunctionSpec, error) {
	var spec core.FunctionSpec
	if path := strings.TrimSpace(submitSpecPath); path != "" {
		loaded, err := core.LoadFunctionSpec(path)
		if err != nil {
			return core.FunctionSpec{}, err
		}
		spec = loaded
		if spec.Conditions.ColonyName == "" {
			spec.Conditions.ColonyName = colony
		}
	} else {
		if strings.TrimSpace(submitFuncName) == "" {
			return core.FunctionSpec{}, fmt.Errorf("--func or --spec is required")
		}
		spec = core.NewFunctionSpec(submitFuncName, submitExecutorType, colony)
		spec.MaxWaitTime = submitMaxWait
		spec.MaxExecTime = submitMaxExec
		spec.MaxRetries = submitMaxRetries
		spec.Priority = submitPriority
	}
	for _, a := range args {
		spec.Args = append(spec.Args, a)
	}
	return spec, nil
}

var processGetCmd = &cobra.Command{
	Use:   "get <processid>",
	Short: "show a process",
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
		proc, err := c.GetProcess(cmd.Context(), args[0], prvKey)
		if err != nil {
			return err
		}
		return renderProcess(proc)
	},
}

var processListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list processes in a state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		state, err := parseState(processListState)
		if err != nil {
			return err
		}
		procs, err := c.GetProcesses(cmd.Context(), colony, state, processListCount, prvKey)
		if err != nil {
			return err
		}
		return renderProcesses(procs)
	},
}

var processCloseCmd = &cobra.Command{
	Use:   "close <processid>",
	Short: "close an assigned process as successful",
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
		out := make([]any, 0, len(processOutput))
		for _, o := range processOutput {
			out = append(out, o)
		}
		if err := c.CloseWithOutput(cmd.Context(), args[0], out, prvKey); err != nil {
			return err
		}
		done("closed process %s", args[0])
		return nil
	},
}

var processFailCmd = &cobra.Command{
	Use:   "fail <processid> [error...]",
	Short: "close an assigned process as failed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := userKey()
		if err != nil {
			return err
		}
		if err := c.Fail(cmd.Context(), args[0], args[1:], prvKey); err != nil {
			return err
		}
		done("failed process %s", args[0])
		return nil
	},
}

var processRemoveCmd = &cobra.Command{
	Use:   "rm <processid>",
	Short: "remove a process",
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
		if err := c.RemoveProcess(cmd.Context(), args[0], prvKey); err != nil {
			return err
		}
		done("removed process %s", args[0])
		return nil
	},
}

var processRemoveAllCmd = &cobra.Command{
	Use:   "rmall",
	Short: "remove every process of the colony in --state (default all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(colonyKey)
		if err != nil {
			return err
		}
		state, err := parseState(processListState)
		if err != nil {
			return err
		}
		if err := c.RemoveAllProcesses(cmd.Context(), colony, state, prvKey); err != nil {
			return err
		}
		done("removed processes of %s", colony)
		return nil
	},
}

var processAttributeCmd = &cobra.Command{
	Use:   "attr <processid> <key> <value>",
	Short: "attach an output attribute to a process",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		attr, err := c.AddAttribute(cmd.Context(), core.NewAttribute(colony, args[0], args[1], args[2]), prvKey)
		if err != nil {
			return err
		}
		done("added attribute %s to %s", attr.AttributeID, args[0])
		return nil
	},
}

// parseState accepts a state name or "all".
func parseState(raw string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "waiting":
		return core.WAITING, nil
	case "running":
		return core.RUNNING, nil
	case "success", "successful":
		return core.SUCCESS, nil
	case "failed":
		return core.FAILED, nil
	case "", "all":
		return core.Unlimited, nil
	default:
		return 0, fmt.Errorf("unknown state %q", raw)
	}
}

func init() {
	f := processSubmitCmd.Flags()
	f.StringVar(&submitSpecPath, "spec", "", "function spec file (json or yaml)")
	f.StringVar(&submitFuncName, "func", "", "function name")
	f.StringVar(&submitExecutorType, "type", "cli", "executor type")
	f.IntVar(&submitMaxWait, "maxwait", core.Unlimited, "max wait seconds")
	f.IntVar(&submitMaxExec, "maxexec", core.Unlimited, "max exec seconds")
	f.IntVar(&submitMaxRetries, "maxretries", 0, "max retries")
	f.IntVar(&submitPriority, "priority", 0, "priority")
	f.DurationVar(&submitWait, "wait", 0, "wait this long for the process to succeed")

	processListCmd.Flags().StringVar(&processListState, "state", "waiting", "waiting|running|successful|failed")
	processListCmd.Flags().IntVar(&processListCount, "count", 20, "max processes")
	processRemoveAllCmd.Flags().StringVar(&processListState, "state", "all", "waiting|running|successful|failed|all")
	processCloseCmd.Flags().StringSliceVar(&processOutput, "out", nil, "output values")

	processCmd.AddCommand(processSubmitCmd, processGetCmd, processListCmd, processCloseCmd,
		processFailCmd, processRemoveCmd, processRemoveAllCmd, processAttributeCmd)
}
