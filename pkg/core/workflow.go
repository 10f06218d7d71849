package core

type WorkflowSpec struct {
	ColonyName    string         `json:"colonyname"`
	FunctionSpecs []FunctionSpec `json:"functionspecs"`
}

func NewWorkflowSpec(colonyName string, specs ...FunctionSpec) WorkflowSpec {
	return WorkflowSpec{ColonyName: colonyName, FunctionSpecs: specs}
}

type ProcessGraph struct {
	ProcessGraphID string   `json:"processgraphid"`
	InitiatorID    string   `json:"initiatorid"`
	InitiatorName  string   `json:"initiatorname"`
	ColonyName     string   `json:"colonyname"`
	RootProcessIDs []string `json:"rootprocessids"`
	State          int      `json:"state"`
	SubmissionTime string   `json:"submissiontime"`
	StartTime      string   `json:"starttime"`
	EndTime        string   `json:"endtime"`
	ProcessIDs     []string `json:"processids"`
}
