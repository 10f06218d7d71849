package executor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/colonies/internal/tools"
)

// Builtin handler names.
const (
	FuncEcho  = "echo"
	FuncAdd   = "add"
	FuncSleep = "sleep"
	FuncExec  = "exec"
)

// BuiltinNames lists every builtin in registration order.
var BuiltinNames = []string{FuncEcho, FuncAdd, FuncSleep, FuncExec}

// BuildBuiltinRegistry registers the named builtins; runner backs exec.
func BuildBuiltinRegistry(names []string, runner tools.CommandRunner) (*Registry, error) {
	reg := NewRegistry()
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		var err error
		switch name {
		case FuncEcho:
			err = reg.Register(FuncEcho, "returns its arguments", echoHandler)
		case FuncAdd:
			err = reg.Register(FuncAdd, "sums numeric arguments", addHandler)
		case FuncSleep:
			err = reg.Register(FuncSleep, "waits for the given duration", sleepHandler)
		case FuncExec:
			err = reg.Register(FuncExec, "runs a host command", execHandler(runner))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownBuiltin, name)
		}
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func echoHandler(_ context.Context, task Task) ([]any, error) {
	out := make([]any, 0, len(task.Process.Spec.Args))
	out = append(out, task.Process.Spec.Args...)
	return out, nil
}

func addHandler(_ context.Context, task Task) ([]any, error) {
	var sum float64
	for i, arg := range task.Args() {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %q is not a number", i, arg)
		}
		sum += v
	}
	return []any{sum}, nil
}

// sleepHandler accepts a Go duration ("1.5s") or a number of seconds.
func sleepHandler(ctx context.Context, task Task) ([]any, error) {
	args := task.Args()
	if len(args) == 0 {
		return nil, fmt.Errorf("sleep requires a duration")
	}
	d, err := parseSleep(args[0])
	if err != nil {
		return nil, err
	}
	task.Log(fmt.Sprintf("sleeping %s", d))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return []any{d.String()}, nil
	}
}

func parseSleep(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid sleep duration %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func execHandler(runner tools.CommandRunner) HandlerFunc {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return func(ctx context.Context, task Task) ([]any, error) {
		args := task.Args()
		if len(args) == 0 {
			return nil, fmt.Errorf("exec requires a command")
		}
		task.Log("exec " + strings.Join(args, " "))
		stdout, stderr, code, err := runner.Run(ctx, args[0], args[1:]...)
		if err != nil {
			msg := strings.TrimSpace(string(stderr))
			if msg == "" {
				msg = err.Error()
			}
			return nil, fmt.Errorf("exit %d: %s", code, msg)
		}
		return []any{string(stdout)}, nil
	}
}
