package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/colonies/internal/config"
	"github.com/danmuck/colonies/internal/executor"
	"github.com/danmuck/colonies/pkg/rpc"
)

type fileConfig struct {
	ServerURL          string   `toml:"server_url"`
	RequestTimeout     string   `toml:"request_timeout"`
	SecurityMode       string   `toml:"security_mode"`
	TLS                bool     `toml:"tls"`
	CAFile             string   `toml:"ca_file"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	PrvKey             string   `toml:"prvkey"`
	ColonyName         string   `toml:"colony_name"`
	ColonyPrvKey       string   `toml:"colony_prvkey"`
	ExecutorName       string   `toml:"executor_name"`
	ExecutorType       string   `toml:"executor_type"`
	Location           string   `toml:"location"`
	SelfApprove        bool     `toml:"self_approve"`
	Workers            int      `toml:"workers"`
	AssignTimeout      string   `toml:"assign_timeout"`
	PollRate           float64  `toml:"poll_rate"`
	Functions          []string `toml:"functions"`
}

type runConfig struct {
	RPC       rpc.Config
	Service   executor.ServiceConfig
	Functions []string
}

func defaultRunConfig() runConfig {
	return runConfig{
		RPC:       rpc.DefaultConfig(),
		Service:   executor.DefaultServiceConfig(),
		Functions: []string{executor.FuncEcho, executor.FuncAdd, executor.FuncSleep},
	}
}

// loadRunConfig overlays only the keys present in path onto the defaults,
// then applies COLONIES_* environment overrides. An empty path skips the
// file.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if strings.TrimSpace(path) != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return runConfig{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *runConfig, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load executor config: %w", err)
	}

	if meta.IsDefined("server_url") {
		cfg.RPC.ServerURL = strings.TrimSpace(raw.ServerURL)
	}
	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RPC.RequestTimeout = d
	}
	if meta.IsDefined("security_mode") {
		cfg.RPC.SecurityMode = rpc.SecurityMode(strings.TrimSpace(raw.SecurityMode))
	}
	if meta.IsDefined("tls") {
		cfg.RPC.TLS.Enabled = raw.TLS
	}
	if meta.IsDefined("ca_file") {
		cfg.RPC.TLS.CAFile = strings.TrimSpace(raw.CAFile)
	}
	if meta.IsDefined("insecure_skip_verify") {
		cfg.RPC.TLS.InsecureSkipVerify = raw.InsecureSkipVerify
	}
	if meta.IsDefined("prvkey") {
		cfg.Service.PrvKey = strings.TrimSpace(raw.PrvKey)
	}
	if meta.IsDefined("colony_name") {
		cfg.Service.ColonyName = strings.TrimSpace(raw.ColonyName)
	}
	if meta.IsDefined("colony_prvkey") {
		cfg.Service.ColonyPrvKey = strings.TrimSpace(raw.ColonyPrvKey)
	}
	if meta.IsDefined("executor_name") {
		cfg.Service.ExecutorName = strings.TrimSpace(raw.ExecutorName)
	}
	if meta.IsDefined("executor_type") {
		cfg.Service.ExecutorType = strings.TrimSpace(raw.ExecutorType)
	}
	if meta.IsDefined("location") {
		cfg.Service.LocationName = strings.TrimSpace(raw.Location)
	}
	if meta.IsDefined("self_approve") {
		cfg.Service.SelfApprove = raw.SelfApprove
	}
	if meta.IsDefined("workers") {
		if raw.Workers <= 0 {
			return fmt.Errorf("workers must be > 0")
		}
		cfg.Service.Workers = raw.Workers
	}
	if meta.IsDefined("assign_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.AssignTimeout))
		if err != nil {
			return fmt.Errorf("parse assign_timeout: %w", err)
		}
		cfg.Service.AssignTimeout = d
	}
	if meta.IsDefined("poll_rate") {
		cfg.Service.PollRate = raw.PollRate
	}
	if meta.IsDefined("functions") {
		cfg.Functions = normalizeFunctions(raw.Functions)
	}
	return nil
}

func applyEnv(cfg *runConfig) error {
	if v := env(config.EnvServerURL); v != "" {
		cfg.RPC.ServerURL = v
	}
	if v := env(config.EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", config.EnvTimeout, err)
		}
		cfg.RPC.RequestTimeout = d
	}
	if v := env(config.EnvSecurityMode); v != "" {
		cfg.RPC.SecurityMode = rpc.SecurityMode(v)
	}
	if v, err := strconv.ParseBool(env(config.EnvTLS)); err == nil {
		cfg.RPC.TLS.Enabled = v
	}
	if v := env(config.EnvTLSCAFile); v != "" {
		cfg.RPC.TLS.CAFile = v
	}
	if v := env(config.EnvPrvKey); v != "" {
		cfg.Service.PrvKey = v
	}
	if v := env(config.EnvColonyName); v != "" {
		cfg.Service.ColonyName = v
	}
	if v := env(config.EnvColonyPrvKey); v != "" {
		cfg.Service.ColonyPrvKey = v
	}
	if v := env(config.EnvExecutorName); v != "" {
		cfg.Service.ExecutorName = v
	}
	if v := env(config.EnvExecutorType); v != "" {
		cfg.Service.ExecutorType = v
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func normalizeFunctions(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, fn := range in {
		v := strings.TrimSpace(fn)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
