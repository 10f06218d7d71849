package core

import "fmt"

// Process states.
const (
	WAITING = 0
	RUNNING = 1
	SUCCESS = 2
	FAILED  = 3
)

// Attribute types.
const (
	IN  = 0
	OUT = 1
	ERR = 2
	ENV = 4
)

// Unlimited disables a wait or execution deadline.
const Unlimited = -1

func StateName(state int) string {
	switch state {
	case WAITING:
		return "waiting"
	case RUNNING:
		return "running"
	case SUCCESS:
		return "successful"
	case FAILED:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", state)
	}
}

type Conditions struct {
	ColonyName       string   `json:"colonyname"`
	ExecutorNames    []string `json:"executornames,omitempty"`
	ExecutorType     string   `json:"executortype"`
	Dependencies     []string `json:"dependencies,omitempty"`
	Nodes            int      `json:"nodes,omitempty"`
	CPU              string   `json:"cpu,omitempty"`
	Processes        int      `json:"processes,omitempty"`
	ProcessesPerNode int      `json:"processespernode,omitempty"`
	Mem              string   `json:"mem,omitempty"`
	Storage          string   `json:"storage,omitempty"`
	GPU              GPU      `json:"gpu,omitzero"`
	WallTime         int64    `json:"walltime,omitempty"`
}

func NewConditions(colonyName, executorType string) Conditions {
	return Conditions{ColonyName: colonyName, ExecutorType: executorType}
}

type SnapshotMount struct {
	SnapshotID   string `json:"snapshotid"`
	Label        string `json:"label"`
	Dir          string `json:"dir"`
	KeepFiles    bool   `json:"keepfiles"`
	KeepSnapshot bool   `json:"keepsnaphot"`
}

type ConflictResolution struct {
	OnStart ConflictPolicy `json:"onstart"`
	OnClose ConflictPolicy `json:"onclose"`
}

type ConflictPolicy struct {
	KeepLocal bool `json:"keeplocal"`
}

type SyncDirMount struct {
	Label       string             `json:"label"`
	Dir         string             `json:"dir"`
	KeepFiles   bool               `json:"keepfiles"`
	OnConflicts ConflictResolution `json:"onconflicts"`
}

type Filesystem struct {
	Mount     string          `json:"mount"`
	Snapshots []SnapshotMount `json:"snapshots,omitempty"`
	Dirs      []SyncDirMount  `json:"dirs,omitempty"`
}

func (f Filesystem) IsZero() bool {
	return f.Mount == "" && len(f.Snapshots) == 0 && len(f.Dirs) == 0
}

type FunctionSpec struct {
	NodeName    string            `json:"nodename,omitempty"`
	FuncName    string            `json:"funcname"`
	Args        []any             `json:"args,omitempty"`
	KwArgs      map[string]any    `json:"kwargs,omitempty"`
	Priority    int               `json:"priority"`
	MaxWaitTime int               `json:"maxwaittime"`
	MaxExecTime int               `json:"maxexectime"`
	MaxRetries  int               `json:"maxretries"`
	Conditions  Conditions        `json:"conditions"`
	Label       string            `json:"label,omitempty"`
	Filesystem  Filesystem        `json:"fs,omitzero"`
	Env         map[string]string `json:"env,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
}

func NewFunctionSpec(funcName, executorType, colonyName string) FunctionSpec {
	return FunctionSpec{
		FuncName:    funcName,
		MaxWaitTime: Unlimited,
		MaxExecTime: Unlimited,
		Conditions:  NewConditions(colonyName, executorType),
	}
}

// StringArgs renders every positional argument as text.
func (s FunctionSpec) StringArgs() []string {
	out := make([]string, 0, len(s.Args))
	for _, arg := range s.Args {
		out = append(out, argString(arg))
	}
	return out
}

func argString(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

type Attribute struct {
	AttributeID          string `json:"attributeid"`
	TargetID             string `json:"targetid"`
	TargetColonyName     string `json:"targetcolonyname"`
	TargetProcessGraphID string `json:"targetprocessgraphid"`
	AttributeType        int    `json:"attributetype"`
	Key                  string `json:"key"`
	Value                string `json:"value"`
}

// NewAttribute builds an output attribute on targetID.
func NewAttribute(colonyName, targetID, key, value string) Attribute {
	return NewTypedAttribute(OUT, colonyName, targetID, key, value)
}

func NewTypedAttribute(attributeType int, colonyName, targetID, key, value string) Attribute {
	return Attribute{
		TargetID:         targetID,
		TargetColonyName: colonyName,
		AttributeType:    attributeType,
		Key:              key,
		Value:            value,
	}
}

type Process struct {
	ProcessID          string       `json:"processid"`
	InitiatorID        string       `json:"initiatorid"`
	InitiatorName      string       `json:"initiatorname"`
	AssignedExecutorID string       `json:"assignedexecutorid"`
	IsAssigned         bool         `json:"isassigned"`
	State              int          `json:"state"`
	PriorityTime       int64        `json:"prioritytime"`
	SubmissionTime     string       `json:"submissiontime"`
	StartTime          string       `json:"starttime"`
	EndTime            string       `json:"endtime"`
	WaitDeadline       string       `json:"waitdeadline"`
	ExecDeadline       string       `json:"execdeadline"`
	Retries            int          `json:"retries"`
	Attributes         []Attribute  `json:"attributes"`
	Spec               FunctionSpec `json:"spec"`
	WaitForParents     bool         `json:"waitforparents"`
	Parents            []string     `json:"parents"`
	Children           []string     `json:"children"`
	ProcessGraphID     string       `json:"processgraphid"`
	Input              []any        `json:"in"`
	Output             []any        `json:"out"`
	Errors             []string     `json:"errors"`
}

// Finished reports whether the process reached a terminal state.
func (p Process) Finished() bool {
	return p.State == SUCCESS || p.State == FAILED
}
