package client

import "github.com/danmuck/colonies/pkg/core"

// Payload types understood by a colonies server.
const (
	AddColonyPayloadType    = "addcolonymsg"
	RemoveColonyPayloadType = "removecolonymsg"
	GetColonyPayloadType    = "getcolonymsg"
	GetColoniesPayloadType  = "getcoloniesmsg"

	AddExecutorPayloadType     = "addexecutormsg"
	ApproveExecutorPayloadType = "approveexecutormsg"
	RejectExecutorPayloadType  = "rejectexecutormsg"
	RemoveExecutorPayloadType  = "removeexecutormsg"
	GetExecutorPayloadType     = "getexecutormsg"
	GetExecutorsPayloadType    = "getexecutorsmsg"

	SubmitFunctionSpecPayloadType = "submitfuncspecmsg"
	AssignProcessPayloadType      = "assignprocessmsg"
	CloseSuccessfulPayloadType    = "closesuccessfulmsg"
	CloseFailedPayloadType        = "closefailedmsg"
	GetProcessPayloadType         = "getprocessmsg"
	GetProcessesPayloadType       = "getprocessesmsg"
	RemoveProcessPayloadType      = "removeprocessmsg"
	RemoveAllProcessesPayloadType = "removeallprocessesmsg"
	SetOutputPayloadType          = "setoutputmsg"
	AddAttributePayloadType       = "addattributemsg"

	SubmitWorkflowSpecPayloadType     = "submitworkflowspecmsg"
	GetProcessGraphPayloadType        = "getprocessgraphmsg"
	GetProcessGraphsPayloadType       = "getprocessgraphsmsg"
	RemoveProcessGraphPayloadType     = "removeprocessgraphmsg"
	RemoveAllProcessGraphsPayloadType = "removeallprocessgraphsmsg"

	AddLogPayloadType        = "addlogmsg"
	GetLogsPayloadType       = "getlogsmsg"
	ChannelAppendPayloadType = "channelappendmsg"
	ChannelReadPayloadType   = "channelreadmsg"
	GetStatisticsPayloadType = "getcolonystatsmsg"

	AddFunctionPayloadType    = "addfunctionmsg"
	GetFunctionsPayloadType   = "getfunctionsmsg"
	RemoveFunctionPayloadType = "removefunctionmsg"

	AddBlueprintDefinitionPayloadType    = "addblueprintdefinitionmsg"
	GetBlueprintDefinitionPayloadType    = "getblueprintdefinitionmsg"
	GetBlueprintDefinitionsPayloadType   = "getblueprintdefinitionsmsg"
	RemoveBlueprintDefinitionPayloadType = "removeblueprintdefinitionmsg"
	AddBlueprintPayloadType              = "addblueprintmsg"
	GetBlueprintPayloadType              = "getblueprintmsg"
	GetBlueprintsPayloadType             = "getblueprintsmsg"
	UpdateBlueprintPayloadType           = "updateblueprintmsg"
	RemoveBlueprintPayloadType           = "removeblueprintmsg"
	UpdateBlueprintStatusPayloadType     = "updateblueprintstatusmsg"
	ReconcileBlueprintPayloadType        = "reconcileblueprintmsg"

	SubscribeProcessesPayloadType = "subscribeprocessesmsg"
	SubscribeProcessPayloadType   = "subscribeprocessmsg"
	SubscribeChannelPayloadType   = "subscribechannelmsg"
)

// Messages sharing a field set are reused across payload types; MsgType
// always carries the payload type the message is sent under.

type ColonyMsg struct {
	MsgType string      `json:"msgtype"`
	Colony  core.Colony `json:"colony"`
}

type ColonyNameMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname,omitempty"`
}

type EmptyMsg struct {
	MsgType string `json:"msgtype"`
}

type ExecutorMsg struct {
	MsgType  string        `json:"msgtype"`
	Executor core.Executor `json:"executor"`
}

type ExecutorNameMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	ExecutorName string `json:"executorname"`
}

type FunctionSpecMsg struct {
	MsgType string            `json:"msgtype"`
	Spec    core.FunctionSpec `json:"spec"`
}

type AssignProcessMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname"`
	Timeout    int    `json:"timeout"`
}

type ProcessIDMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
}

type CloseSuccessfulMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
	Output    []any  `json:"out,omitempty"`
}

type CloseFailedMsg struct {
	MsgType   string   `json:"msgtype"`
	ProcessID string   `json:"processid"`
	Errors    []string `json:"errors,omitempty"`
}

type SetOutputMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
	Output    []any  `json:"out"`
}

type QueryMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname"`
	Count      int    `json:"count"`
	State      int    `json:"state"`
}

type ColonyStateMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname"`
	State      int    `json:"state"`
}

type AttributeMsg struct {
	MsgType   string         `json:"msgtype"`
	Attribute core.Attribute `json:"attribute"`
}

type WorkflowSpecMsg struct {
	MsgType string            `json:"msgtype"`
	Spec    core.WorkflowSpec `json:"spec"`
}

type ProcessGraphIDMsg struct {
	MsgType        string `json:"msgtype"`
	ProcessGraphID string `json:"processgraphid"`
}

type AddLogMsg struct {
	MsgType      string `json:"msgtype"`
	ProcessID    string `json:"processid"`
	ColonyName   string `json:"colonyname,omitempty"`
	ExecutorName string `json:"executorname,omitempty"`
	Message      string `json:"message"`
}

type GetLogsMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	ProcessID    string `json:"processid,omitempty"`
	ExecutorName string `json:"executorname,omitempty"`
	Count        int    `json:"count"`
	Since        int64  `json:"since"`
}

type ChannelAppendMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
	Name      string `json:"name"`
	Data      string `json:"data"`
	Type      string `json:"type,omitempty"`
	InReplyTo int64  `json:"inreplyto,omitempty"`
}

type ChannelReadMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
	Name      string `json:"name"`
	AfterSeq  int64  `json:"afterseq"`
	Limit     int    `json:"limit"`
}

type FunctionMsg struct {
	MsgType  string        `json:"msgtype"`
	Function core.Function `json:"fun"`
}

type GetFunctionsMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	ExecutorName string `json:"executorname,omitempty"`
}

type FunctionIDMsg struct {
	MsgType    string `json:"msgtype"`
	FunctionID string `json:"functionid"`
}

type BlueprintDefinitionMsg struct {
	MsgType             string                   `json:"msgtype"`
	BlueprintDefinition core.BlueprintDefinition `json:"blueprintdefinition"`
}

type NamedMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname"`
	Name       string `json:"name"`
}

type BlueprintMsg struct {
	MsgType         string         `json:"msgtype"`
	Blueprint       core.Blueprint `json:"blueprint"`
	ForceGeneration bool           `json:"forcegeneration,omitempty"`
}

type GetBlueprintsMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	Kind         string `json:"kind,omitempty"`
	LocationName string `json:"locationname,omitempty"`
}

type UpdateBlueprintStatusMsg struct {
	MsgType    string         `json:"msgtype"`
	ColonyName string         `json:"colonyname"`
	Name       string         `json:"name"`
	Status     map[string]any `json:"status"`
}

type ReconcileBlueprintMsg struct {
	MsgType    string `json:"msgtype"`
	ColonyName string `json:"colonyname"`
	Name       string `json:"name"`
	Force      bool   `json:"force"`
}

type SubscribeProcessesMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	ExecutorType string `json:"executortype"`
	State        int    `json:"state"`
	Timeout      int    `json:"timeout"`
}

type SubscribeProcessMsg struct {
	MsgType      string `json:"msgtype"`
	ColonyName   string `json:"colonyname"`
	ProcessID    string `json:"processid"`
	ExecutorType string `json:"executortype"`
	State        int    `json:"state"`
	Timeout      int    `json:"timeout"`
}

type SubscribeChannelMsg struct {
	MsgType   string `json:"msgtype"`
	ProcessID string `json:"processid"`
	Name      string `json:"name"`
	AfterSeq  int64  `json:"afterseq"`
	Timeout   int    `json:"timeout"`
}
