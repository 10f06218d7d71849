package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/colonies/internal/config"
	"github.com/danmuck/colonies/internal/observability"
	"github.com/danmuck/colonies/pkg/client"
)

type globalFlags struct {
	ConfigPath string
	ServerURL  string
	PrvKey     string
	ColonyName string
	Output     string
	Timeout    time.Duration
}

var (
	flags   globalFlags
	profile config.Profile
)

var rootCmd = &cobra.Command{
	Use:           "colonies",
	Short:         "colonies command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.InitLogger("colonies")
		var err error
		if strings.TrimSpace(flags.ConfigPath) != "" {
			profile, err = config.Load(flags.ConfigPath)
		} else {
			profile, err = config.FromEnv()
		}
		if err != nil {
			return err
		}
		if flags.ServerURL != "" {
			profile.ServerURL = flags.ServerURL
		}
		if flags.ColonyName != "" {
			profile.ColonyName = flags.ColonyName
		}
		logger.Debug().
			Str("command", cmd.CommandPath()).
			Str("server", profile.ServerURL).
			Str("colony", profile.ColonyName).
			Msg("profile resolved")
		switch flags.Output {
		case outputTable, outputJSON:
		default:
			return fmt.Errorf("unknown output format %q", flags.Output)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "profile file (toml or yaml)")
	pf.StringVar(&flags.ServerURL, "server", "", "server url, overrides the profile")
	pf.StringVar(&flags.PrvKey, "prvkey", "", "signing key, overrides the profile key for this command")
	pf.StringVar(&flags.ColonyName, "colony", "", "colony name, overrides the profile")
	pf.StringVarP(&flags.Output, "output", "o", outputTable, "output format: table|json")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "request timeout, overrides the profile")

	rootCmd.AddCommand(keyCmd, colonyCmd, executorCmd, processCmd, workflowCmd,
		logCmd, channelCmd, functionCmd, blueprintCmd, subscribeCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "colonies: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	cfg, err := profile.RPCConfig()
	if err != nil {
		return nil, err
	}
	if flags.Timeout > 0 {
		cfg.RequestTimeout = flags.Timeout
	}
	return client.New(cfg)
}

// signingKey picks --prvkey, then the first non-empty profile key.
func signingKey(candidates ...string) (string, error) {
	if k := strings.TrimSpace(flags.PrvKey); k != "" {
		return k, nil
	}
	for _, k := range candidates {
		if k = strings.TrimSpace(k); k != "" {
			return k, nil
		}
	}
	return "", fmt.Errorf("no signing key: pass --prvkey or set %s", config.EnvPrvKey)
}

func userKey() (string, error)   { return signingKey(profile.PrvKey) }
func colonyKey() (string, error) { return signingKey(profile.ColonyPrvKey) }
func serverKey() (string, error) { return signingKey(profile.ServerPrvKey) }

func colonyName() (string, error) {
	if name := strings.TrimSpace(profile.ColonyName); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no colony: pass --colony or set %s", config.EnvColonyName)
}

// prepare resolves the client, colony and key most commands need.
func prepare(key func() (string, error)) (*client.Client, string, string, error) {
	c, err := newClient()
	if err != nil {
		return nil, "", "", err
	}
	colony, err := colonyName()
	if err != nil {
		return nil, "", "", err
	}
	prvKey, err := key()
	if err != nil {
		return nil, "", "", err
	}
	return c, colony, prvKey, nil
}
