package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
	"github.com/louisbranch/worldkeeper/internal/planning"
)

// PlanFailureInput represents the MCP tool input for a failed planning check.
type PlanFailureInput struct {
	TopicKey   string `json:"topic_key" jsonschema:"specific plan identifier, e.g. pick_the_vault_lock"`
	Difficulty int    `json:"difficulty" jsonschema:"difficulty of the failed check"`
}

// PlanFailureResult represents the MCP tool output for a failed planning check.
type PlanFailureResult struct {
	TopicKey    string `json:"topic_key" jsonschema:"frozen plan identifier"`
	FreezeUntil int64  `json:"freeze_until" jsonschema:"in-game unix time the freeze lifts"`
}

// PlanFailureTool defines the MCP tool schema for registering plan failures.
func PlanFailureTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "plan_register_failure",
		Description: "Freezes re-attempts of a planning topic after a failed quality check; duration scales with difficulty",
	}
}

// PlanFailureHandler executes a plan failure registration.
func PlanFailureHandler(service *keeper.Service) mcp.ToolHandlerFor[PlanFailureInput, PlanFailureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlanFailureInput) (*mcp.CallToolResult, PlanFailureResult, error) {
		plan, err := service.RegisterPlanFailure(ctx, input.TopicKey, input.Difficulty)
		if err != nil {
			return nil, PlanFailureResult{}, err
		}
		return nil, PlanFailureResult{TopicKey: plan.TopicKey, FreezeUntil: plan.FreezeUntil.Unix()}, nil
	}
}

// PlanCheckInput represents the MCP tool input for a freeze check.
type PlanCheckInput struct {
	TopicKey string `json:"topic_key" jsonschema:"plan identifier to check"`
}

// PlanCheckResult represents the MCP tool output for a freeze check.
type PlanCheckResult struct {
	TopicKey string `json:"topic_key" jsonschema:"plan identifier"`
	Frozen   bool   `json:"frozen" jsonschema:"whether the topic is still cooling down"`
}

// PlanCheckTool defines the MCP tool schema for freeze checks.
func PlanCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "plan_check_frozen",
		Description: "Reports whether a planning topic is frozen on the in-game clock",
	}
}

// PlanCheckHandler executes a freeze check.
func PlanCheckHandler(service *keeper.Service) mcp.ToolHandlerFor[PlanCheckInput, PlanCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlanCheckInput) (*mcp.CallToolResult, PlanCheckResult, error) {
		frozen := service.IsPlanFrozen(ctx, input.TopicKey)
		return nil, PlanCheckResult{TopicKey: input.TopicKey, Frozen: frozen}, nil
	}
}

// PlanBreakInput represents the MCP tool input for an early freeze break.
type PlanBreakInput struct {
	TopicKey string `json:"topic_key" jsonschema:"frozen plan identifier"`
	Reason   string `json:"reason" jsonschema:"new_information, different_method, qualified_assistance, or admin_override"`
}

// PlanBreakResult represents the MCP tool output for an early freeze break.
type PlanBreakResult struct {
	TopicKey string `json:"topic_key" jsonschema:"plan identifier"`
	Broken   bool   `json:"broken" jsonschema:"whether the freeze was lifted"`
}

// PlanBreakTool defines the MCP tool schema for early freeze breaks.
func PlanBreakTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "plan_break_freeze",
		Description: "Lifts a planning freeze before expiry for an accepted reason",
	}
}

// PlanBreakHandler executes an early freeze break.
func PlanBreakHandler(service *keeper.Service) mcp.ToolHandlerFor[PlanBreakInput, PlanBreakResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlanBreakInput) (*mcp.CallToolResult, PlanBreakResult, error) {
		if err := service.BreakFreeze(ctx, input.TopicKey, planning.BreakReason(input.Reason)); err != nil {
			return nil, PlanBreakResult{}, err
		}
		return nil, PlanBreakResult{TopicKey: input.TopicKey, Broken: true}, nil
	}
}
