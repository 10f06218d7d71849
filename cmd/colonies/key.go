package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/pkg/crypto"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "generate keys and work with signatures locally",
}

var keyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "generate a private key and print it with its identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		prvKey, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		id, err := crypto.GenerateID(prvKey)
		if err != nil {
			return err
		}
		return render(map[string]string{"prvkey": prvKey, "id": id}, []string{"PRVKEY", "ID"}, func() [][]string {
			return [][]string{{prvKey, id}}
		})
	},
}

var keyIDCmd = &cobra.Command{
	Use:   "id [prvkey]",
	Short: "print the identity of a private key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prvKey, err := keyArg(args)
		if err != nil {
			return err
		}
		id, err := crypto.GenerateID(prvKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var keySignCmd = &cobra.Command{
	Use:   "sign <message> [prvkey]",
	Short: "sign a message",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prvKey, err := keyArg(args[1:])
		if err != nil {
			return err
		}
		sig, err := crypto.GenerateSignature(args[0], prvKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sig)
		return nil
	},
}

var keyRecoverCmd = &cobra.Command{
	Use:   "recover <message> <signature>",
	Short: "recover the signer identity of a message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := crypto.RecoverID(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var keyHashCmd = &cobra.Command{
	Use:   "hash <message>",
	Short: "print the sha3-256 digest of a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), crypto.GenerateHash(args[0]))
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyNewCmd, keyIDCmd, keySignCmd, keyRecoverCmd, keyHashCmd)
}

func keyArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return userKey()
}
