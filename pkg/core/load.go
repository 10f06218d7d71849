package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("core: unsupported document format")

// LoadFunctionSpec reads a function spec from a .json, .yaml or .yml file.
func LoadFunctionSpec(path string) (FunctionSpec, error) {
	var spec FunctionSpec
	err := loadDocument(path, &spec)
	return spec, err
}

func LoadWorkflowSpec(path string) (WorkflowSpec, error) {
	var spec WorkflowSpec
	err := loadDocument(path, &spec)
	return spec, err
}

func LoadBlueprint(path string) (Blueprint, error) {
	var bp Blueprint
	err := loadDocument(path, &bp)
	return bp, err
}

func LoadBlueprintDefinition(path string) (BlueprintDefinition, error) {
	var def BlueprintDefinition
	err := loadDocument(path, &def)
	return def, err
}

// DecodeDocument decodes JSON or YAML data into out using the JSON field names.
func DecodeDocument(data []byte, format string, out any) error {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(out)
	case "yaml", "yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		raw, err := json.Marshal(normalizeYAML(doc))
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("core: load %s: %w", path, err)
	}
	if err := DecodeDocument(data, filepath.Ext(path), out); err != nil {
		return fmt.Errorf("core: parse %s: %w", path, err)
	}
	return nil
}

// normalizeYAML rewrites map[any]any nodes so the tree marshals as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}
