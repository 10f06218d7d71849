package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/colonies/internal/testutil/testlog"
)

func TestConstructors(t *testing.T) {
	testlog.Start(t)
	colony := NewColony("test-id", "test-colony")
	if colony.ColonyID != "test-id" || colony.Name != "test-colony" {
		t.Fatalf("colony=%+v", colony)
	}

	executor := NewExecutor("test-executor", "exec-id", "cli", "test-colony")
	if executor.ExecutorName != "test-executor" || executor.ExecutorID != "exec-id" ||
		executor.ExecutorType != "cli" || executor.ColonyName != "test-colony" || executor.State != PENDING {
		t.Fatalf("executor=%+v", executor)
	}

	spec := NewFunctionSpec("my-func", "cli", "my-colony")
	if spec.FuncName != "my-func" || spec.Conditions.ExecutorType != "cli" || spec.Conditions.ColonyName != "my-colony" {
		t.Fatalf("spec=%+v", spec)
	}
	if len(spec.Args) != 0 || len(spec.KwArgs) != 0 || len(spec.Conditions.ExecutorNames) != 0 {
		t.Fatalf("spec should start empty: %+v", spec)
	}

	attr := NewAttribute("test-colony", "process-123", "result", "success")
	if attr.TargetColonyName != "test-colony" || attr.TargetID != "process-123" || attr.AttributeType != OUT {
		t.Fatalf("attribute=%+v", attr)
	}
}

func TestExecutorOmitsEmptyFields(t *testing.T) {
	testlog.Start(t)
	raw, err := json.Marshal(NewExecutor("test", "id", "cli", "colony"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, absent := range []string{"commissiontime", "lastheardfromtime", "locationname", "blueprintid", "capabilities", "allocations"} {
		if strings.Contains(body, `"`+absent+`"`) {
			t.Fatalf("%s should be omitted: %s", absent, body)
		}
	}
	for _, present := range []string{"executorid", "executorname", "executortype", "colonyname"} {
		if !strings.Contains(body, `"`+present+`"`) {
			t.Fatalf("%s missing: %s", present, body)
		}
	}
}

func TestCapabilitiesAndAllocationsIsEmpty(t *testing.T) {
	testlog.Start(t)
	var caps Capabilities
	if !caps.IsEmpty() {
		t.Fatalf("zero capabilities should be empty")
	}
	caps.Hardware = append(caps.Hardware, Hardware{})
	if caps.IsEmpty() {
		t.Fatalf("hardware capabilities should not be empty")
	}
	if !(Capabilities{}).IsEmpty() || (Capabilities{Software: []Software{{}}}).IsEmpty() {
		t.Fatalf("software capability emptiness wrong")
	}

	var allocs Allocations
	if !allocs.IsEmpty() {
		t.Fatalf("zero allocations should be empty")
	}
	allocs.Projects = map[string]Project{"test": {}}
	if allocs.IsEmpty() {
		t.Fatalf("allocations with a project should not be empty")
	}
}

func TestProcessToleratesNullFields(t *testing.T) {
	testlog.Start(t)
	body := `{
		"processid": "proc-123",
		"initiatorid": null,
		"assignedexecutorid": null,
		"isassigned": false,
		"state": 0,
		"attributes": null,
		"spec": {
			"funcname": "test",
			"args": null,
			"kwargs": null,
			"conditions": {"colonyname": "test", "executornames": null, "dependencies": null},
			"env": null,
			"channels": null
		},
		"parents": null,
		"children": null,
		"in": null,
		"out": null,
		"errors": null
	}`
	var p Process
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ProcessID != "proc-123" || p.InitiatorID != "" || len(p.Attributes) != 0 || len(p.Spec.Args) != 0 || len(p.Output) != 0 {
		t.Fatalf("process=%+v", p)
	}
	if p.Finished() {
		t.Fatalf("waiting process reported finished")
	}
}

func TestExecutorToleratesNullCapabilities(t *testing.T) {
	testlog.Start(t)
	body := `{"executorid":"id-123","executorname":"test","executortype":"cli","colonyname":"colony","state":0,"capabilities":null,"allocations":null}`
	var e Executor
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ExecutorID != "id-123" || !e.Capabilities.IsEmpty() || !e.Allocations.IsEmpty() {
		t.Fatalf("executor=%+v", e)
	}
}

func TestChannelEntryAndBlueprintDecode(t *testing.T) {
	testlog.Start(t)
	var entry ChannelEntry
	if err := json.Unmarshal([]byte(`{"sequence":42,"data":"hello world","type":"data","inreplyto":0}`), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.Sequence != 42 || entry.Data != "hello world" || entry.Type != "data" {
		t.Fatalf("entry=%+v", entry)
	}

	var bp Blueprint
	body := `{"blueprintid":"bp-123","kind":"Deployment","metadata":{"name":"my-app","colonyname":"test-colony"},
		"handler":{"executortype":"docker-reconciler"},"spec":{},"status":{},"generation":1,"reconciledgeneration":0}`
	if err := json.Unmarshal([]byte(body), &bp); err != nil {
		t.Fatalf("unmarshal blueprint: %v", err)
	}
	if bp.Metadata.Name != "my-app" || bp.Handler.ExecutorType != "docker-reconciler" || bp.Generation != 1 {
		t.Fatalf("blueprint=%+v", bp)
	}
	if bp.Reconciled() {
		t.Fatalf("generation 1 reconciled at 0 reported reconciled")
	}
}

func TestStringArgs(t *testing.T) {
	testlog.Start(t)
	var spec FunctionSpec
	if err := json.Unmarshal([]byte(`{"funcname":"add","args":["2",3,1.5,null,true]}`), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := spec.StringArgs()
	want := []string{"2", "3", "1.5", "", "true"}
	if len(got) != len(want) {
		t.Fatalf("args=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg[%d]=%q want %q", i, got[i], want[i])
		}
	}
}

func TestStateConstants(t *testing.T) {
	testlog.Start(t)
	if WAITING != 0 || RUNNING != 1 || SUCCESS != 2 || FAILED != 3 {
		t.Fatalf("process state constants changed")
	}
	if PENDING != 0 || APPROVED != 1 || REJECTED != 2 {
		t.Fatalf("executor state constants changed")
	}
	if IN != 0 || OUT != 1 || ERR != 2 || ENV != 4 {
		t.Fatalf("attribute type constants changed")
	}
	if StateName(SUCCESS) != "successful" || StateName(9) != "state(9)" {
		t.Fatalf("state names wrong")
	}
}

func TestLoadWorkflowSpecYAML(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	doc := `
colonyname: dev
functionspecs:
  - nodename: step1
    funcname: echo
    args: ["Step 1 complete"]
    maxexectime: 60
    conditions:
      colonyname: dev
      executortype: cli
  - nodename: step3
    funcname: echo
    args: ["done"]
    kwargs:
      retries: 2
    conditions:
      colonyname: dev
      executortype: cli
      dependencies: [step1]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	spec, err := LoadWorkflowSpec(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.ColonyName != "dev" || len(spec.FunctionSpecs) != 2 {
		t.Fatalf("spec=%+v", spec)
	}
	step3 := spec.FunctionSpecs[1]
	if step3.Conditions.Dependencies[0] != "step1" || step3.KwArgs["retries"] != float64(2) {
		t.Fatalf("step3=%+v", step3)
	}
	if spec.FunctionSpecs[0].MaxExecTime != 60 {
		t.Fatalf("maxexectime=%d", spec.FunctionSpecs[0].MaxExecTime)
	}
}

func TestLoadFunctionSpecJSONAndUnsupported(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.json")
	raw, _ := json.Marshal(NewFunctionSpec("echo", "cli", "dev"))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	spec, err := LoadFunctionSpec(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.FuncName != "echo" || spec.MaxWaitTime != Unlimited {
		t.Fatalf("spec=%+v", spec)
	}

	bad := filepath.Join(dir, "spec.toml")
	if err := os.WriteFile(bad, []byte("funcname = 'echo'"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFunctionSpec(bad); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}
