package core

type BlueprintDefinition struct {
	BlueprintDefinitionID string         `json:"blueprintdefinitionid,omitempty"`
	Name                  string         `json:"name"`
	ColonyName            string         `json:"colonyname"`
	Kind                  string         `json:"kind"`
	ExecutorType          string         `json:"executortype"`
	SpecSchema            map[string]any `json:"specschema,omitempty"`
	StatusSchema          map[string]any `json:"statusschema,omitempty"`
}

type BlueprintMetadata struct {
	Name       string `json:"name"`
	ColonyName string `json:"colonyname"`
}

type BlueprintHandler struct {
	ExecutorType string `json:"executortype"`
}

// Blueprint is a desired-state document reconciled by an executor of
// Handler.ExecutorType.
type Blueprint struct {
	BlueprintID          string            `json:"blueprintid,omitempty"`
	Kind                 string            `json:"kind"`
	Metadata             BlueprintMetadata `json:"metadata"`
	Handler              BlueprintHandler  `json:"handler"`
	Spec                 map[string]any    `json:"spec"`
	Status               map[string]any    `json:"status"`
	Generation           int64             `json:"generation"`
	ReconciledGeneration int64             `json:"reconciledgeneration"`
}

func NewBlueprint(kind, name, colonyName, executorType string) Blueprint {
	return Blueprint{
		Kind:     kind,
		Metadata: BlueprintMetadata{Name: name, ColonyName: colonyName},
		Handler:  BlueprintHandler{ExecutorType: executorType},
		Spec:     map[string]any{},
		Status:   map[string]any{},
	}
}

// Reconciled reports whether the handler caught up with the latest generation.
func (b Blueprint) Reconciled() bool {
	return b.ReconciledGeneration >= b.Generation
}
