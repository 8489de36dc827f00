package domain

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
	"github.com/louisbranch/worldkeeper/internal/reputation"
)

// RumorInput represents a rumor in a reputation record.
type RumorInput struct {
	Text    string `json:"text" jsonschema:"rumor text"`
	HeardAt int64  `json:"heard_at" jsonschema:"in-game unix time the rumor began circulating"`
}

// PublicReputationInput represents the public layer of a reputation record.
type PublicReputationInput struct {
	Score      int          `json:"score" jsonschema:"public score, -100 to 100"`
	Titles     []string     `json:"titles,omitempty"`
	KnownDeeds []string     `json:"known_deeds,omitempty"`
	Rumors     []RumorInput `json:"rumors,omitempty"`
}

// FactionReputationInput represents one faction's book on an actor.
type FactionReputationInput struct {
	Score         int      `json:"score" jsonschema:"faction score, -10 to 10"`
	KnownDeeds    []string `json:"known_deeds,omitempty"`
	TrustOverride *int     `json:"trust_override,omitempty" jsonschema:"authoritative disposition for faction members"`
}

// ReputationResolveInput represents the MCP tool input for a disposition query.
type ReputationResolveInput struct {
	Public        PublicReputationInput             `json:"public"`
	Factions      map[string]FactionReputationInput `json:"factions,omitempty"`
	DirectTrust   *int                              `json:"direct_trust,omitempty" jsonschema:"relationship trust between actor and the specific NPC"`
	TargetFaction string                            `json:"target_faction,omitempty" jsonschema:"faction id of the judging NPC"`
}

// ReputationResolveResult represents the MCP tool output for a disposition query.
type ReputationResolveResult struct {
	Disposition int    `json:"disposition" jsonschema:"effective disposition, -10 to 10"`
	Standing    string `json:"standing,omitempty" jsonschema:"standing tier name when the target faction applied"`
	Notoriety   string `json:"notoriety" jsonschema:"notoriety tier name for the public score"`
}

// ReputationResolveTool defines the MCP tool schema for disposition queries.
func ReputationResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "reputation_resolve",
		Description: "Resolves an NPC's effective disposition toward an actor: trust override, then direct trust, then faction standing, then public notoriety, then neutral",
	}
}

// ReputationResolveHandler executes a disposition query.
func ReputationResolveHandler(service *keeper.Service) mcp.ToolHandlerFor[ReputationResolveInput, ReputationResolveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ReputationResolveInput) (*mcp.CallToolResult, ReputationResolveResult, error) {
		record := recordFromInput(input)
		result := ReputationResolveResult{
			Disposition: service.ResolveReputation(record, input.DirectTrust, input.TargetFaction),
			Notoriety:   reputation.NotorietyFor(record.Public.Score).Name,
		}
		if faction, ok := record.Factions[input.TargetFaction]; ok {
			result.Standing = reputation.StandingFor(faction.Score).Name
		}
		return nil, result, nil
	}
}

func recordFromInput(input ReputationResolveInput) reputation.Record {
	record := reputation.Record{
		Public: reputation.PublicReputation{
			Score:      input.Public.Score,
			Titles:     input.Public.Titles,
			KnownDeeds: input.Public.KnownDeeds,
		},
		Factions: map[string]reputation.FactionReputation{},
	}
	for _, rumor := range input.Public.Rumors {
		record.Public.Rumors = append(record.Public.Rumors, reputation.Rumor{
			Text:    rumor.Text,
			HeardAt: time.Unix(rumor.HeardAt, 0).UTC(),
		})
	}
	for factionID, faction := range input.Factions {
		record.Factions[factionID] = reputation.FactionReputation{
			Score:         faction.Score,
			KnownDeeds:    faction.KnownDeeds,
			TrustOverride: faction.TrustOverride,
		}
	}
	return record
}
