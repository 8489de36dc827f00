package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
)

// XPAwardInput represents the MCP tool input for a narrative XP award.
type XPAwardInput struct {
	CharacterID string `json:"character_id" jsonschema:"player character entity id"`
	Amount      int    `json:"amount" jsonschema:"XP to grant, non-negative"`
	Reason      string `json:"reason,omitempty" jsonschema:"narrative reason for the award"`
}

// XPAwardResult represents the MCP tool output for a narrative XP award.
type XPAwardResult struct {
	CharacterID string `json:"character_id" jsonschema:"player character entity id"`
	XPCurrent   int    `json:"xp_current" jsonschema:"total XP after the award"`
	Eligible    bool   `json:"level_up_eligible" jsonschema:"whether the character now qualifies for the next level"`
}

// XPAwardTool defines the MCP tool schema for narrative XP awards.
func XPAwardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "xp_award",
		Description: "Grants XP to a character for non-combat achievement; level never changes implicitly",
	}
}

// XPAwardHandler executes an XP award request.
func XPAwardHandler(service *keeper.Service) mcp.ToolHandlerFor[XPAwardInput, XPAwardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input XPAwardInput) (*mcp.CallToolResult, XPAwardResult, error) {
		record, err := service.AwardXP(ctx, input.CharacterID, input.Amount)
		if err != nil {
			return nil, XPAwardResult{}, err
		}
		eligible, err := service.CheckLevelUp(input.CharacterID)
		if err != nil {
			return nil, XPAwardResult{}, err
		}
		return nil, XPAwardResult{
			CharacterID: input.CharacterID,
			XPCurrent:   record.XPCurrent,
			Eligible:    eligible,
		}, nil
	}
}

// LevelUpInput represents the MCP tool input for level-up operations.
type LevelUpInput struct {
	CharacterID string `json:"character_id" jsonschema:"player character entity id"`
}

// LevelUpCheckResult represents the MCP tool output for a level-up check.
type LevelUpCheckResult struct {
	CharacterID string `json:"character_id" jsonschema:"player character entity id"`
	Eligible    bool   `json:"eligible" jsonschema:"whether the character qualifies for the next level"`
}

// LevelUpCheckTool defines the MCP tool schema for level-up checks.
func LevelUpCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "level_up_check",
		Description: "Reports whether a character has enough XP for the next level",
	}
}

// LevelUpCheckHandler executes a level-up check.
func LevelUpCheckHandler(service *keeper.Service) mcp.ToolHandlerFor[LevelUpInput, LevelUpCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LevelUpInput) (*mcp.CallToolResult, LevelUpCheckResult, error) {
		eligible, err := service.CheckLevelUp(input.CharacterID)
		if err != nil {
			return nil, LevelUpCheckResult{}, err
		}
		return nil, LevelUpCheckResult{CharacterID: input.CharacterID, Eligible: eligible}, nil
	}
}

// LevelUpApplyResult represents the MCP tool output for a level-up.
type LevelUpApplyResult struct {
	CharacterID      string `json:"character_id" jsonschema:"player character entity id"`
	Applied          bool   `json:"applied" jsonschema:"false when the character was not eligible"`
	Level            int    `json:"level,omitempty" jsonschema:"new level when applied"`
	ProficiencyBonus int    `json:"proficiency_bonus,omitempty" jsonschema:"recomputed proficiency bonus"`
	HPGain           int    `json:"hp_gain,omitempty" jsonschema:"hit points gained"`
}

// LevelUpApplyTool defines the MCP tool schema for applying a level-up.
func LevelUpApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "level_up_apply",
		Description: "Raises a qualifying character by exactly one level; call again for multi-level jumps",
	}
}

// LevelUpApplyHandler executes a level-up.
func LevelUpApplyHandler(service *keeper.Service) mcp.ToolHandlerFor[LevelUpInput, LevelUpApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LevelUpInput) (*mcp.CallToolResult, LevelUpApplyResult, error) {
		grants, applied, err := service.ApplyLevelUp(ctx, input.CharacterID)
		if err != nil {
			return nil, LevelUpApplyResult{}, err
		}
		return nil, LevelUpApplyResult{
			CharacterID:      input.CharacterID,
			Applied:          applied,
			Level:            grants.Level,
			ProficiencyBonus: grants.ProficiencyBonus,
			HPGain:           grants.HPGain,
		}, nil
	}
}
