package core

// Executor states.
const (
	PENDING  = 0
	APPROVED = 1
	REJECTED = 2
)

type Executor struct {
	ExecutorID        string       `json:"executorid"`
	ExecutorType      string       `json:"executortype"`
	ExecutorName      string       `json:"executorname"`
	ColonyName        string       `json:"colonyname"`
	State             int          `json:"state"`
	RequireFuncReg    bool         `json:"requirefuncreg,omitempty"`
	CommissionTime    string       `json:"commissiontime,omitempty"`
	LastHeardFromTime string       `json:"lastheardfromtime,omitempty"`
	LocationName      string       `json:"locationname,omitempty"`
	BlueprintID       string       `json:"blueprintid,omitempty"`
	Capabilities      Capabilities `json:"capabilities,omitzero"`
	Allocations       Allocations  `json:"allocations,omitzero"`
}

func NewExecutor(executorName, executorID, executorType, colonyName string) Executor {
	return Executor{
		ExecutorID:   executorID,
		ExecutorType: executorType,
		ExecutorName: executorName,
		ColonyName:   colonyName,
		State:        PENDING,
	}
}

type Capabilities struct {
	Hardware []Hardware `json:"hardware,omitempty"`
	Software []Software `json:"software,omitempty"`
}

func (c Capabilities) IsEmpty() bool {
	return len(c.Hardware) == 0 && len(c.Software) == 0
}

// IsZero lets omitzero drop empty capabilities.
func (c Capabilities) IsZero() bool {
	return c.IsEmpty()
}

type Hardware struct {
	Model        string   `json:"model"`
	Nodes        int      `json:"nodes"`
	CPU          string   `json:"cpu"`
	Cores        int      `json:"cores"`
	Mem          string   `json:"mem"`
	Storage      string   `json:"storage"`
	Platform     string   `json:"platform"`
	Architecture string   `json:"architecture"`
	Network      []string `json:"network,omitempty"`
	GPU          GPU      `json:"gpu"`
}

type Software struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

type GPU struct {
	Name      string `json:"name"`
	Mem       string `json:"mem"`
	Count     int    `json:"count"`
	NodeCount int    `json:"nodecount"`
}

type Allocations struct {
	Projects map[string]Project `json:"projects,omitempty"`
}

func (a Allocations) IsEmpty() bool {
	return len(a.Projects) == 0
}

func (a Allocations) IsZero() bool {
	return a.IsEmpty()
}

type Project struct {
	AllocatedCPU     int64 `json:"allocatedcpu"`
	UsedCPU          int64 `json:"usedcpu"`
	AllocatedGPU     int64 `json:"allocatedgpu"`
	UsedGPU          int64 `json:"usedgpu"`
	AllocatedStorage int64 `json:"allocatedstorage"`
	UsedStorage      int64 `json:"usedstorage"`
}
