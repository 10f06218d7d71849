package tools

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	requireBinary(t, "sh")
	stdout, stderr, code, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil || code != 0 {
		t.Fatalf("run: code=%d err=%v", code, err)
	}
	if strings.TrimSpace(string(stdout)) != "out" || strings.TrimSpace(string(stderr)) != "err" {
		t.Fatalf("stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	requireBinary(t, "sh")
	_, _, code, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "exit 3")
	if err == nil || code != 3 {
		t.Fatalf("code=%d err=%v", code, err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, _, code, err := ExecRunner{}.Run(context.Background(), "colonies-no-such-binary")
	if err == nil || code != 127 {
		t.Fatalf("code=%d err=%v", code, err)
	}
}

func TestExecRunnerCanceled(t *testing.T) {
	requireBinary(t, "sleep")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, code, err := ExecRunner{}.Run(ctx, "sleep", "5")
	if err == nil || code != -1 {
		t.Fatalf("code=%d err=%v", code, err)
	}
}
