package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
	"github.com/louisbranch/worldkeeper/internal/registry"
)

// EntityRegisterInput represents the MCP tool input for issuing an entity id.
type EntityRegisterInput struct {
	Kind        string `json:"kind" jsonschema:"entity kind prefix: pc, npc, loc, item, or faction"`
	DisplayName string `json:"display_name" jsonschema:"human-readable name the slug derives from"`
}

// EntityRegisterResult represents the MCP tool output for issuing an entity id.
type EntityRegisterResult struct {
	ID string `json:"id" jsonschema:"issued entity identifier"`
}

// EntityRegisterTool defines the MCP tool schema for issuing entity ids.
func EntityRegisterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_register",
		Description: "Issues a stable entity identifier; re-registering the same name returns the existing id",
	}
}

// EntityRegisterHandler executes an entity registration.
func EntityRegisterHandler(service *keeper.Service) mcp.ToolHandlerFor[EntityRegisterInput, EntityRegisterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityRegisterInput) (*mcp.CallToolResult, EntityRegisterResult, error) {
		entityID, err := service.RegisterEntity(ctx, registry.KindFromPrefix(input.Kind), input.DisplayName)
		if err != nil {
			return nil, EntityRegisterResult{}, err
		}
		return nil, EntityRegisterResult{ID: entityID}, nil
	}
}

// EntityValidateInput represents the MCP tool input for a reference check.
type EntityValidateInput struct {
	ID string `json:"id" jsonschema:"entity identifier to validate"`
}

// EntityValidateResult represents the MCP tool output for a reference check.
type EntityValidateResult struct {
	ID    string `json:"id" jsonschema:"checked identifier"`
	Known bool   `json:"known" jsonschema:"whether the identifier is registered"`
}

// EntityValidateTool defines the MCP tool schema for reference checks.
func EntityValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_validate",
		Description: "Reports whether an entity identifier is known; relationship edges must only reference known ids",
	}
}

// EntityValidateHandler executes a reference check.
func EntityValidateHandler(service *keeper.Service) mcp.ToolHandlerFor[EntityValidateInput, EntityValidateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityValidateInput) (*mcp.CallToolResult, EntityValidateResult, error) {
		return nil, EntityValidateResult{ID: input.ID, Known: service.ValidateReference(input.ID)}, nil
	}
}
