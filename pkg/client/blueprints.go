package client

import (
	"context"

	"github.com/danmuck/colonies/pkg/core"
)

func (c *Client) AddBlueprintDefinition(ctx context.Context, def core.BlueprintDefinition, prvKey string) (core.BlueprintDefinition, error) {
	var out core.BlueprintDefinition
	msg := BlueprintDefinitionMsg{MsgType: AddBlueprintDefinitionPayloadType, BlueprintDefinition: def}
	err := c.call(ctx, AddBlueprintDefinitionPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetBlueprintDefinition(ctx context.Context, colonyName, name string, prvKey string) (core.BlueprintDefinition, error) {
	var out core.BlueprintDefinition
	msg := NamedMsg{MsgType: GetBlueprintDefinitionPayloadType, ColonyName: colonyName, Name: name}
	err := c.call(ctx, GetBlueprintDefinitionPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetBlueprintDefinitions(ctx context.Context, colonyName string, prvKey string) ([]core.BlueprintDefinition, error) {
	var out []core.BlueprintDefinition
	msg := ColonyNameMsg{MsgType: GetBlueprintDefinitionsPayloadType, ColonyName: colonyName}
	if err := c.call(ctx, GetBlueprintDefinitionsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

func (c *Client) RemoveBlueprintDefinition(ctx context.Context, colonyName, name string, prvKey string) error {
	msg := NamedMsg{MsgType: RemoveBlueprintDefinitionPayloadType, ColonyName: colonyName, Name: name}
	return c.call(ctx, RemoveBlueprintDefinitionPayloadType, msg, prvKey, nil)
}

func (c *Client) AddBlueprint(ctx context.Context, bp core.Blueprint, prvKey string) (core.Blueprint, error) {
	var out core.Blueprint
	msg := BlueprintMsg{MsgType: AddBlueprintPayloadType, Blueprint: bp}
	err := c.call(ctx, AddBlueprintPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) GetBlueprint(ctx context.Context, colonyName, name string, prvKey string) (core.Blueprint, error) {
	var out core.Blueprint
	msg := NamedMsg{MsgType: GetBlueprintPayloadType, ColonyName: colonyName, Name: name}
	err := c.call(ctx, GetBlueprintPayloadType, msg, prvKey, &out)
	return out, err
}

// GetBlueprints filters by kind and location when they are non-empty.
func (c *Client) GetBlueprints(ctx context.Context, colonyName, kind, locationName string, prvKey string) ([]core.Blueprint, error) {
	var out []core.Blueprint
	msg := GetBlueprintsMsg{MsgType: GetBlueprintsPayloadType, ColonyName: colonyName, Kind: kind, LocationName: locationName}
	if err := c.call(ctx, GetBlueprintsPayloadType, msg, prvKey, &out); err != nil {
		return nil, err
	}
	return list(out), nil
}

// UpdateBlueprint replaces the blueprint spec; forceGeneration bumps the generation
// even when nothing changed.
func (c *Client) UpdateBlueprint(ctx context.Context, bp core.Blueprint, forceGeneration bool, prvKey string) (core.Blueprint, error) {
	var out core.Blueprint
	msg := BlueprintMsg{MsgType: UpdateBlueprintPayloadType, Blueprint: bp, ForceGeneration: forceGeneration}
	err := c.call(ctx, UpdateBlueprintPayloadType, msg, prvKey, &out)
	return out, err
}

func (c *Client) RemoveBlueprint(ctx context.Context, colonyName, name string, prvKey string) error {
	msg := NamedMsg{MsgType: RemoveBlueprintPayloadType, ColonyName: colonyName, Name: name}
	return c.call(ctx, RemoveBlueprintPayloadType, msg, prvKey, nil)
}

func (c *Client) UpdateBlueprintStatus(ctx context.Context, colonyName, name string, status map[string]any, prvKey string) error {
	if status == nil {
		status = map[string]any{}
	}
	msg := UpdateBlueprintStatusMsg{MsgType: UpdateBlueprintStatusPayloadType, ColonyName: colonyName, Name: name, Status: status}
	return c.call(ctx, UpdateBlueprintStatusPayloadType, msg, prvKey, nil)
}

func (c *Client) ReconcileBlueprint(ctx context.Context, colonyName, name string, force bool, prvKey string) (core.Process, error) {
	var out core.Process
	msg := ReconcileBlueprintMsg{MsgType: ReconcileBlueprintPayloadType, ColonyName: colonyName, Name: name, Force: force}
	err := c.call(ctx, ReconcileBlueprintPayloadType, msg, prvKey, &out)
	return out, err
}
