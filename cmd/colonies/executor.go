package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/client"
	"github.com/danmuck/colonies/pkg/core"
	"github.com/danmuck/colonies/pkg/crypto"
)

var (
	executorAddName     string
	executorAddType     string
	executorAddLocation string
	executorAddPrvKey   string
	executorAddApprove  bool
)

var executorCmd = &cobra.Command{
	Use:   "executor",
	Short: "manage executors (signed with the colony key)",
}

var executorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "register an executor; generates its key unless --executor-prvkey is set",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(colonyKey)
		if err != nil {
			return err
		}
		executorPrvKey := strings.TrimSpace(executorAddPrvKey)
		if executorPrvKey == "" {
			if executorPrvKey, err = crypto.GeneratePrivateKey(); err != nil {
				return err
			}
		}
		executorID, err := crypto.GenerateID(executorPrvKey)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(executorAddName)
		if name == "" {
			name = "executor-" + uuid.NewString()[:8]
		}
		executor := core.NewExecutor(name, executorID, executorAddType, colony)
		executor.LocationName = executorAddLocation
		added, err := c.AddExecutor(cmd.Context(), executor, prvKey)
		if err != nil {
			return err
		}
		if executorAddApprove {
			if err := c.ApproveExecutor(cmd.Context(), colony, name, prvKey); err != nil {
				return err
			}
			added.State = core.APPROVED
		}
		return render(map[string]any{"executor": added, "prvkey": executorPrvKey},
			[]string{"NAME", "ID", "STATE", "PRVKEY"}, func() [][]string {
				return [][]string{{added.ExecutorName, added.ExecutorID, executorState(added.State), executorPrvKey}}
			})
	},
}

func executorAction(use, short, verb string, act func(c *client.Client, ctx context.Context, colony, name, prvKey string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, colony, prvKey, err := prepare(colonyKey)
			if err != nil {
				return err
			}
			if err := act(c, cmd.Context(), colony, args[0], prvKey); err != nil {
				return err
			}
			done("%s executor %s", verb, args[0])
			return nil
		},
	}
}

var (
	executorApproveCmd = executorAction("approve", "approve a pending executor", "approved", (*client.Client).ApproveExecutor)
	executorRejectCmd  = executorAction("reject", "reject an executor", "rejected", (*client.Client).RejectExecutor)
	executorRemoveCmd  = executorAction("rm", "remove an executor", "removed", (*client.Client).RemoveExecutor)
)

var executorListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list executors of the colony",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		executors, err := c.GetExecutors(cmd.Context(), colony, prvKey)
		if err != nil {
			return err
		}
		return renderExecutors(executors)
	},
}

var functionCmd = &cobra.Command{
	Use:   "function",
	Short: "inspect registered functions",
}

var functionListCmd = &cobra.Command{
	Use:   "ls [executor]",
	Short: "list functions, optionally of one executor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		var funcs []core.Function
		if len(args) == 1 {
			funcs, err = c.GetFunctionsByExecutor(cmd.Context(), colony, args[0], prvKey)
		} else {
			funcs, err = c.GetFunctions(cmd.Context(), colony, prvKey)
		}
		if err != nil {
			return err
		}
		return renderFunctions(funcs)
	},
}

var functionRemoveCmd = &cobra.Command{
	Use:   "rm <functionid>",
	Short: "remove a function",
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
		if err := c.RemoveFunction(cmd.Context(), args[0], prvKey); err != nil {
			return err
		}
		done("removed function %s", args[0])
		return nil
	},
}

func init() {
	f := executorAddCmd.Flags()
	f.StringVar(&executorAddName, "name", "", "executor name (default: generated)")
	f.StringVar(&executorAddType, "type", "cli", "executor type")
	f.StringVar(&executorAddLocation, "location", "", "executor location")
	f.StringVar(&executorAddPrvKey, "executor-prvkey", "", "existing executor key")
	f.BoolVar(&executorAddApprove, "approve", false, "approve right after registering")
	executorCmd.AddCommand(executorAddCmd, executorApproveCmd, executorRejectCmd, executorRemoveCmd, executorListCmd)
	functionCmd.AddCommand(functionListCmd, functionRemoveCmd)
}
