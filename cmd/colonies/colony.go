package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/core"
	"github.com/danmuck/colonies/pkg/crypto"
)

var (
	colonyAddName   string
	colonyAddPrvKey string
)

var colonyCmd = &cobra.Command{
	Use:   "colony",
	Short: "manage colonies (signed with the server key)",
}

var colonyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "add a colony; generates its key unless --colony-prvkey is set",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := serverKey()
		if err != nil {
			return err
		}
		colonyPrvKey := strings.TrimSpace(colonyAddPrvKey)
		if colonyPrvKey == "" {
			if colonyPrvKey, err = crypto.GeneratePrivateKey(); err != nil {
				return err
			}
		}
		colonyID, err := crypto.GenerateID(colonyPrvKey)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(colonyAddName)
		if name == "" {
			name = "colony-" + uuid.NewString()[:8]
		}
		added, err := c.AddColony(cmd.Context(), core.NewColony(colonyID, name), prvKey)
		if err != nil {
			return err
		}
		return render(map[string]string{"name": added.Name, "colonyid": added.ColonyID, "prvkey": colonyPrvKey},
			[]string{"NAME", "ID", "PRVKEY"}, func() [][]string {
				return [][]string{{added.Name, added.ColonyID, colonyPrvKey}}
			})
	},
}

var colonyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "show the selected colony",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		got, err := c.GetColony(cmd.Context(), colony, prvKey)
		if err != nil {
			return err
		}
		return renderColonies([]core.Colony{got})
	},
}

var colonyListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list colonies",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		prvKey, err := serverKey()
		if err != nil {
			return err
		}
		colonies, err := c.GetColonies(cmd.Context(), prvKey)
		if err != nil {
			return err
		}
		return renderColonies(colonies)
	},
}

var colonyRemoveCmd = &cobra.Command{
	Use:   "rm",
	Short: "remove the selected colony",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(serverKey)
		if err != nil {
			return err
		}
		if err := c.RemoveColony(cmd.Context(), colony, prvKey); err != nil {
			return err
		}
		done("removed colony %s", colony)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show process and workflow counts for the colony",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, colony, prvKey, err := prepare(userKey)
		if err != nil {
			return err
		}
		stats, err := c.GetStatistics(cmd.Context(), colony, prvKey)
		if err != nil {
			return err
		}
		return renderStats(stats)
	},
}

func init() {
	colonyAddCmd.Flags().StringVar(&colonyAddName, "name", "", "colony name (default: generated)")
	colonyAddCmd.Flags().StringVar(&colonyAddPrvKey, "colony-prvkey", "", "existing colony key")
	colonyCmd.AddCommand(colonyAddCmd, colonyGetCmd, colonyListCmd, colonyRemoveCmd)
}
