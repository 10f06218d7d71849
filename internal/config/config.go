package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/danmuck/colonies/pkg/rpc"
)

// Profile is everything a CLI or executor needs to talk to one colony.
type Profile struct {
	ServerURL      string         `toml:"server_url" yaml:"server_url"`
	ServerPrvKey   string         `toml:"server_prvkey" yaml:"server_prvkey"`
	PrvKey         string         `toml:"prvkey" yaml:"prvkey"`
	ColonyName     string         `toml:"colony_name" yaml:"colony_name"`
	ColonyPrvKey   string         `toml:"colony_prvkey" yaml:"colony_prvkey"`
	RequestTimeout string         `toml:"request_timeout" yaml:"request_timeout"`
	StreamGrace    string         `toml:"stream_grace" yaml:"stream_grace"`
	Security       SecurityConfig `toml:"security" yaml:"security"`
	Executor       ExecutorConfig `toml:"executor" yaml:"executor"`
}

type SecurityConfig struct {
	Mode               string `toml:"mode" yaml:"mode"`
	TLS                bool   `toml:"tls" yaml:"tls"`
	MTLS               bool   `toml:"mtls" yaml:"mtls"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	CAFile             string `toml:"ca_file" yaml:"ca_file"`
	CertFile           string `toml:"cert_file" yaml:"cert_file"`
	KeyFile            string `toml:"key_file" yaml:"key_file"`
	ServerName         string `toml:"server_name" yaml:"server_name"`
}

type ExecutorConfig struct {
	Name          string   `toml:"name" yaml:"name"`
	Type          string   `toml:"type" yaml:"type"`
	LocationName  string   `toml:"location" yaml:"location"`
	Workers       int      `toml:"workers" yaml:"workers"`
	AssignTimeout string   `toml:"assign_timeout" yaml:"assign_timeout"`
	PollRate      float64  `toml:"poll_rate" yaml:"poll_rate"`
	SelfApprove   bool     `toml:"self_approve" yaml:"self_approve"`
	Functions     []string `toml:"functions" yaml:"functions"`
}

const (
	DefaultExecutorType  = "cli"
	DefaultWorkers       = 1
	DefaultAssignTimeout = "10s"
	DefaultPollRate      = 5.0
)

// Load reads a TOML or YAML profile by extension, fills defaults, applies
// COLONIES_* environment overrides and validates the result.
func Load(path string) (Profile, error) {
	var p Profile
	if err := loadFile(path, &p); err != nil {
		return Profile{}, err
	}
	p = p.WithDefaults()
	ApplyEnv(&p)
	if err := ValidateProfile(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// FromEnv builds a profile from defaults and the environment alone.
func FromEnv() (Profile, error) {
	p := Profile{}.WithDefaults()
	ApplyEnv(&p)
	if err := ValidateProfile(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) WithDefaults() Profile {
	if strings.TrimSpace(p.ServerURL) == "" {
		p.ServerURL = rpc.DefaultServerURL
	}
	if strings.TrimSpace(p.Executor.Type) == "" {
		p.Executor.Type = DefaultExecutorType
	}
	if p.Executor.Workers <= 0 {
		p.Executor.Workers = DefaultWorkers
	}
	if strings.TrimSpace(p.Executor.AssignTimeout) == "" {
		p.Executor.AssignTimeout = DefaultAssignTimeout
	}
	if p.Executor.PollRate <= 0 {
		p.Executor.PollRate = DefaultPollRate
	}
	return p
}

// RPCConfig maps the profile onto the envelope client configuration.
func (p Profile) RPCConfig() (rpc.Config, error) {
	cfg := rpc.DefaultConfig()
	cfg.ServerURL = strings.TrimSpace(p.ServerURL)
	timeout, err := parseDuration("request_timeout", p.RequestTimeout)
	if err != nil {
		return rpc.Config{}, err
	}
	grace, err := parseDuration("stream_grace", p.StreamGrace)
	if err != nil {
		return rpc.Config{}, err
	}
	cfg.RequestTimeout = timeout
	cfg.StreamGrace = grace
	cfg.SecurityMode = rpc.SecurityMode(p.Security.Mode)
	cfg.TLS = rpc.TLSConfig{
		Enabled:            p.Security.TLS,
		Mutual:             p.Security.MTLS,
		InsecureSkipVerify: p.Security.InsecureSkipVerify,
		CAFile:             p.Security.CAFile,
		CertFile:           p.Security.CertFile,
		KeyFile:            p.Security.KeyFile,
		ServerName:         p.Security.ServerName,
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return rpc.Config{}, err
	}
	return cfg, nil
}

// AssignTimeout is the parsed executor assign timeout.
func (p Profile) AssignTimeout() (time.Duration, error) {
	return parseDuration("executor.assign_timeout", p.Executor.AssignTimeout)
}

func loadFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		err = toml.Unmarshal(data, out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		return fmt.Errorf("config load failed (%s): unsupported extension", path)
	}
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateProfile(p Profile) error {
	if strings.TrimSpace(p.ServerURL) == "" {
		return fmt.Errorf("profile missing server_url")
	}
	if _, err := p.RPCConfig(); err != nil {
		return fmt.Errorf("profile invalid: %w", err)
	}
	if _, err := p.AssignTimeout(); err != nil {
		return err
	}
	if p.Executor.Workers < 0 {
		return fmt.Errorf("executor workers must be >= 0")
	}
	return nil
}

// ValidateExecutor checks the fields an executor cannot start without.
func ValidateExecutor(p Profile) error {
	if strings.TrimSpace(p.PrvKey) == "" {
		return fmt.Errorf("executor profile missing prvkey")
	}
	if strings.TrimSpace(p.ColonyName) == "" {
		return fmt.Errorf("executor profile missing colony_name")
	}
	if strings.TrimSpace(p.Executor.Name) == "" {
		return fmt.Errorf("executor profile missing executor.name")
	}
	if p.Executor.SelfApprove && strings.TrimSpace(p.ColonyPrvKey) == "" {
		return fmt.Errorf("self_approve requires colony_prvkey")
	}
	return nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s invalid: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be >= 0", field)
	}
	return d, nil
}
