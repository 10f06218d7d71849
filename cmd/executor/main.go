package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/colonies/internal/executor"
	"github.com/danmuck/colonies/internal/observability"
	"github.com/danmuck/colonies/internal/tools"
	"github.com/danmuck/colonies/pkg/client"
)

func main() {
	configPath := flag.String("config", "", "executor config file (toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "executor: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	logger := observability.InitLogger("executor")
	observability.RegisterMetrics()

	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	c, err := client.New(cfg.RPC)
	if err != nil {
		return err
	}
	reg, err := executor.BuildBuiltinRegistry(cfg.Functions, tools.ExecRunner{})
	if err != nil {
		return err
	}
	svc, err := executor.NewService(c, cfg.Service, reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("server", cfg.RPC.ServerURL).
		Str("executor", cfg.Service.ExecutorName).
		Strs("functions", cfg.Functions).
		Msg("executor starting")
	return svc.Run(ctx)
}
