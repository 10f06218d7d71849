package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/colonies/pkg/rpc"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTOMLDefaults(t *testing.T) {
	path := writeFile(t, "client.toml", `
colony_name = "dev"
prvkey = "ddf7f7791208083b6a9ed975a72684f6406a269cfa36f1b1c32045c0a71fff05"
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.ServerURL != rpc.DefaultServerURL {
		t.Fatalf("unexpected server url: %q", p.ServerURL)
	}
	if p.Executor.Type != DefaultExecutorType || p.Executor.Workers != DefaultWorkers {
		t.Fatalf("executor defaults not applied: %+v", p.Executor)
	}
	d, err := p.AssignTimeout()
	if err != nil || d != 10*time.Second {
		t.Fatalf("assign timeout=%v err=%v", d, err)
	}

	cfg, err := p.RPCConfig()
	if err != nil {
		t.Fatalf("rpc config: %v", err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "executor.yaml", `
server_url: https://colonies.example.com/api
colony_name: prod
request_timeout: 5s
stream_grace: 2s
security:
  mode: production
  tls: true
executor:
  name: worker-7
  type: gpu
  workers: 4
  functions: [echo, exec]
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Executor.Name != "worker-7" || p.Executor.Workers != 4 {
		t.Fatalf("unexpected executor: %+v", p.Executor)
	}
	if len(p.Executor.Functions) != 2 || p.Executor.Functions[1] != "exec" {
		t.Fatalf("unexpected functions: %+v", p.Executor.Functions)
	}
	cfg, err := p.RPCConfig()
	if err != nil {
		t.Fatalf("rpc config: %v", err)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.StreamGrace != 2*time.Second {
		t.Fatalf("durations not applied: %+v", cfg)
	}
	if cfg.SecurityMode != rpc.SecurityModeProduction || !cfg.TLS.Enabled {
		t.Fatalf("security not applied: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "client.toml", `
server_url = "http://a.example:50080/api"
colony_name = "file"
`)
	t.Setenv(EnvServerURL, "http://b.example:50080/api")
	t.Setenv(EnvColonyName, "env")
	t.Setenv(EnvExecutorName, "from-env")
	t.Setenv(EnvTLS, "not-a-bool")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.ServerURL != "http://b.example:50080/api" {
		t.Fatalf("server url not overridden: %q", p.ServerURL)
	}
	if p.ColonyName != "env" || p.Executor.Name != "from-env" {
		t.Fatalf("env not applied: %+v", p)
	}
	if p.Security.TLS {
		t.Fatalf("invalid bool should be ignored")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvServerURL, "http://env.example:1/api")
	t.Setenv(EnvTimeout, "3s")
	p, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	cfg, err := p.RPCConfig()
	if err != nil {
		t.Fatalf("rpc config: %v", err)
	}
	if cfg.ServerURL != "http://env.example:1/api" || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected rpc config: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "bad duration", file: "a.toml", content: `request_timeout = "soon"`},
		{name: "bad scheme", file: "b.toml", content: `server_url = "ftp://x/api"`},
		{name: "production without tls", file: "c.toml", content: "[security]\nmode = \"production\"\n"},
		{name: "unknown extension", file: "d.ini", content: `x=1`},
		{name: "bad toml", file: "e.toml", content: `server_url = `},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tc.file, tc.content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidateExecutor(t *testing.T) {
	p := Profile{}.WithDefaults()
	if err := ValidateExecutor(p); err == nil {
		t.Fatalf("expected missing prvkey")
	}
	p.PrvKey = "k"
	p.ColonyName = "dev"
	p.Executor.Name = "w"
	if err := ValidateExecutor(p); err != nil {
		t.Fatalf("validate: %v", err)
	}
	p.Executor.SelfApprove = true
	if err := ValidateExecutor(p); err == nil || !strings.Contains(err.Error(), "colony_prvkey") {
		t.Fatalf("expected colony_prvkey error, got %v", err)
	}
}

func TestTemplatesLoad(t *testing.T) {
	for _, kind := range []string{"client", "executor"} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), kind+".toml")
			if err := WriteTemplate(path, kind, false); err != nil {
				t.Fatalf("write template: %v", err)
			}
			if err := WriteTemplate(path, kind, false); err == nil {
				t.Fatalf("expected exists error")
			}
			if err := WriteTemplate(path, kind, true); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if _, err := Load(path); err != nil {
				t.Fatalf("template does not load: %v", err)
			}
		})
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
