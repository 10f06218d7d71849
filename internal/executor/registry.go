package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/colonies/pkg/core"
)

var (
	ErrHandlerExists   = errors.New("executor: handler already exists")
	ErrHandlerNil      = errors.New("executor: handler is nil")
	ErrInvalidFuncName = errors.New("executor: invalid function name")
	ErrUnknownBuiltin  = errors.New("executor: unknown builtin handler")
)

// Task is one assigned process as seen by a handler.
type Task struct {
	Process core.Process
	// Log appends a line to the process log on the server.
	Log func(message string)
}

// Args returns the positional arguments rendered as text.
func (t Task) Args() []string {
	return t.Process.Spec.StringArgs()
}

// HandlerFunc runs one process and returns its output values.
type HandlerFunc func(ctx context.Context, task Task) ([]any, error)

type HandlerMetadata struct {
	FuncName    string
	Description string
}

type entry struct {
	meta HandlerMetadata
	fn   HandlerFunc
}

// Registry stores handlers by function name.
type Registry struct {
	items map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]entry)}
}

// Register adds fn under funcName.
func (r *Registry) Register(funcName, description string, fn HandlerFunc) error {
	if fn == nil {
		return ErrHandlerNil
	}
	funcName = strings.TrimSpace(funcName)
	if !isValidFuncName(funcName) {
		return fmt.Errorf("%w: %q", ErrInvalidFuncName, funcName)
	}
	if _, ok := r.items[funcName]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, funcName)
	}
	r.items[funcName] = entry{
		meta: HandlerMetadata{FuncName: funcName, Description: strings.TrimSpace(description)},
		fn:   fn,
	}
	return nil
}

func (r *Registry) Resolve(funcName string) (HandlerFunc, bool) {
	e, ok := r.items[funcName]
	return e.fn, ok
}

// ListMetadata returns metadata ordered by function name.
func (r *Registry) ListMetadata() []HandlerMetadata {
	list := make([]HandlerMetadata, 0, len(r.items))
	for _, e := range r.items {
		list = append(list, e.meta)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].FuncName < list[j].FuncName
	})
	return list
}

func (r *Registry) Len() int {
	return len(r.items)
}

func isValidFuncName(name string) bool {
	if name == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isAlpha || isDigit || isSep) {
			return false
		}
		if (i == 0 || i == len(name)-1) && isSep {
			return false
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
