package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/core"
)

var (
	workflowListState string
	workflowListCount int
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "submit and inspect workflows",
}

var workflowSubmitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "submit a workflow spec (json or yaml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		spec, err := core.LoadWorkflowSpec(args[0])
		if err != nil {
			return err
		}
		if spec.ColonyName == "" {
			spec.ColonyName = colony
		}
		for i := range spec.FunctionSpecs {
			if spec.FunctionSpecs[i].Conditions.ColonyName == "" {
				spec.FunctionSpecs[i].Conditions.ColonyName = spec.ColonyName
			}
		}
		graph, err := c.SubmitWorkflow(cmd.Context(), spec, prvKey)
		if err != nil {
			return err
		}
		return renderGraph(graph)
	},
}

var workflowGetCmd = &cobra.Command{
	Use:   "get <processgraphid>",
	Short: "show a process graph",
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
		graph, err := c.GetProcessGraph(cmd.Context(), args[0], prvKey)
		if err != nil {
			return err
		}
		return renderGraph(graph)
	},
}

var workflowListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list process graphs in a state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		state, err := parseState(workflowListState)
		if err != nil {
			return err
		}
		graphs, err := c.GetProcessGraphs(cmd.Context(), colony, state, workflowListCount, prvKey)
		if err != nil {
			return err
		}
		return render(graphs, []string{"ID", "STATE", "PROCESSES"}, func() [][]string {
			rows := make([][]string, 0, len(graphs))
			for _, g := range graphs {
				rows = append(rows, []string{g.ProcessGraphID, core.StateName(g.State), strconv.Itoa(len(g.ProcessIDs))})
			}
			return rows
		})
	},
}

var workflowRemoveCmd = &cobra.Command{
	Use:   "rm <processgraphid>",
	Short: "remove a process graph",
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
		if err := c.RemoveProcessGraph(cmd.Context(), args[0], prvKey); err != nil {
			return err
		}
		done("removed workflow %s", args[0])
		return nil
	},
}

var workflowRemoveAllCmd = &cobra.Command{
	Use:   "rmall",
	Short: "remove every process graph of the colony in --state (default all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(colonyKey)
		if err != nil {
			return err
		}
		state, err := parseState(workflowListState)
		if err != nil {
			return err
		}
		if err := c.RemoveAllProcessGraphs(cmd.Context(), colony, state, prvKey); err != nil {
			return err
		}
		done("removed workflows of %s", colony)
		return nil
	},
}

func init() {
	workflowListCmd.Flags().StringVar(&workflowListState, "state", "waiting", "waiting|running|successful|failed")
	workflowListCmd.Flags().IntVar(&workflowListCount, "count", 20, "max graphs")
	workflowRemoveAllCmd.Flags().StringVar(&workflowListState, "state", "all", "waiting|running|successful|failed|all")
	workflowCmd.AddCommand(workflowSubmitCmd, workflowGetCmd, workflowListCmd, workflowRemoveCmd, workflowRemoveAllCmd)
}
