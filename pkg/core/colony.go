package core

type Colony struct {
	ColonyID string `json:"colonyid"`
	Name     string `json:"name"`
}

func NewColony(colonyID, name string) Colony {
	return Colony{ColonyID: colonyID, Name: name}
}

// Statistics is the server-side process and workflow census of a colony.
type Statistics struct {
	Colonies            int `json:"colonies"`
	Executors           int `json:"executors"`
	WaitingProcesses    int `json:"waitingprocesses"`
	RunningProcesses    int `json:"runningprocesses"`
	SuccessfulProcesses int `json:"successfulprocesses"`
	FailedProcesses     int `json:"failedprocesses"`
	WaitingWorkflows    int `json:"waitingworkflows"`
	RunningWorkflows    int `json:"runningworkflows"`
	SuccessfulWorkflows int `json:"successfulworkflows"`
	FailedWorkflows     int `json:"failedworkflows"`
}

type Log struct {
	ProcessID    string `json:"processid"`
	ColonyName   string `json:"colonyname"`
	ExecutorName string `json:"executorname"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"`
}

type ChannelEntry struct {
	Sequence  int64  `json:"sequence"`
	Data      string `json:"data"`
	Type      string `json:"type"`
	InReplyTo int64  `json:"inreplyto"`
}

// Function is a registered function with its execution counters.
type Function struct {
	FunctionID   string  `json:"functionid"`
	ExecutorName string  `json:"executorname"`
	ExecutorType string  `json:"executortype"`
	ColonyName   string  `json:"colonyname"`
	FuncName     string  `json:"funcname"`
	Counter      int64   `json:"counter"`
	MinWaitTime  float64 `json:"minwaittime"`
	MaxWaitTime  float64 `json:"maxwaittime"`
	MinExecTime  float64 `json:"minexectime"`
	MaxExecTime  float64 `json:"maxexectime"`
	AvgWaitTime  float64 `json:"avgwaittime"`
	AvgExecTime  float64 `json:"avgexectime"`
}

func NewFunction(executorName, executorType, colonyName, funcName string) Function {
	return Function{
		ExecutorName: executorName,
		ExecutorType: executorType,
		ColonyName:   colonyName,
		FuncName:     funcName,
	}
}
