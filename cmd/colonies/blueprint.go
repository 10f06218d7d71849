package main

import (
	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/core"
)

var (
	blueprintKind     string
	blueprintLocation string
	blueprintForce    bool
)

var blueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "manage blueprints and blueprint definitions",
}

var blueprintAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "add a blueprint (json or yaml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		bp, err := core.LoadBlueprint(args[0])
		if err != nil {
			return err
		}
		if bp.Metadata.ColonyName == "" {
			bp.Metadata.ColonyName = colony
		}
		added, err := c.AddBlueprint(cmd.Context(), bp, prvKey)
		if err != nil {
			return err
		}
		return renderBlueprints([]core.Blueprint{added})
	},
}

var blueprintUpdateCmd = &cobra.Command{
	Use:   "update <file>",
	Short: "replace a blueprint spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		bp, err := core.LoadBlueprint(args[0])
		if err != nil {
			return err
		}
		if bp.Metadata.ColonyName == "" {
			bp.Metadata.ColonyName = colony
		}
		updated, err := c.UpdateBlueprint(cmd.Context(), bp, blueprintForce, prvKey)
		if err != nil {
			return err
		}
		return renderBlueprints([]core.Blueprint{updated})
	},
}

var blueprintGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "show a blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		bp, err := c.GetBlueprint(cmd.Context(), colony, args[0], prvKey)
		if err != nil {
			return err
		}
		return renderBlueprints([]core.Blueprint{bp})
	},
}

var blueprintListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list blueprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		bps, err := c.GetBlueprints(cmd.Context(), colony, blueprintKind, blueprintLocation, prvKey)
		if err != nil {
			return err
		}
		return renderBlueprints(bps)
	},
}

var blueprintRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "remove a blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		if err := c.RemoveBlueprint(cmd.Context(), colony, args[0], prvKey); err != nil {
			return err
		}
		done("removed blueprint %s", args[0])
		return nil
	},
}

var blueprintReconcileCmd = &cobra.Command{
	Use:   "reconcile <name>",
	Short: "submit a reconcile process for a blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		proc, err := c.ReconcileBlueprint(cmd.Context(), colony, args[0], blueprintForce, prvKey)
		if err != nil {
			return err
		}
		return renderProcess(proc)
	},
}

var blueprintDefCmd = &cobra.Command{
	Use:   "def",
	Short: "manage blueprint definitions",
}

var blueprintDefAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "add a blueprint definition (json or yaml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(colonyKey)
		if err != nil {
			return err
		}
		def, err := core.LoadBlueprintDefinition(args[0])
		if err != nil {
			return err
		}
		if def.ColonyName == "" {
			def.ColonyName = colony
		}
		added, err := c.AddBlueprintDefinition(cmd.Context(), def, prvKey)
		if err != nil {
			return err
		}
		return renderDefinitions([]core.BlueprintDefinition{added})
	},
}

var blueprintDefListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list blueprint definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		defs, err := c.GetBlueprintDefinitions(cmd.Context(), colony, prvKey)
		if err != nil {
			return err
		}
		return renderDefinitions(defs)
	},
}

var blueprintDefGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "show a blueprint definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		def, err := c.GetBlueprintDefinition(cmd.Context(), colony, args[0], prvKey)
		if err != nil {
			return err
		}
		return renderDefinitions([]core.BlueprintDefinition{def})
	},
}

var blueprintDefRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "remove a blueprint definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(colonyKey)
		if err != nil {
			return err
		}
		if err := c.RemoveBlueprintDefinition(cmd.Context(), colony, args[0], prvKey); err != nil {
			return err
		}
		done("removed blueprint definition %s", args[0])
		return nil
	},
}

func init() {
	blueprintListCmd.Flags().StringVar(&blueprintKind, "kind", "", "filter by kind")
	blueprintListCmd.Flags().StringVar(&blueprintLocation, "location", "", "filter by location")
	blueprintUpdateCmd.Flags().BoolVar(&blueprintForce, "force", false, "bump the generation even if the blueprint spec is unchanged")
	blueprintReconcileCmd.Flags().BoolVar(&blueprintForce, "force", false, "reconcile even when up to date")

	blueprintDefCmd.AddCommand(blueprintDefAddCmd, blueprintDefGetCmd, blueprintDefListCmd, blueprintDefRemoveCmd)
	blueprintCmd.AddCommand(blueprintAddCmd, blueprintUpdateCmd, blueprintGetCmd, blueprintListCmd,
		blueprintRemoveCmd, blueprintReconcileCmd, blueprintDefCmd)
}
