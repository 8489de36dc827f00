package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/combat"
	"github.com/louisbranch/worldkeeper/internal/keeper"
)

// CombatStartInput represents the MCP tool input for starting combat.
type CombatStartInput struct {
	LocationID string `json:"location_id" jsonschema:"location entity id where combat begins"`
}

// CombatStartResult represents the MCP tool output for starting combat.
type CombatStartResult struct {
	SessionID string `json:"session_id" jsonschema:"combat session identifier"`
}

// CombatStartTool defines the MCP tool schema for starting combat.
func CombatStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_start",
		Description: "Opens a combat session at a location; combatants and initiative follow before combat begins",
	}
}

// CombatStartHandler executes a combat start request.
func CombatStartHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatStartInput, CombatStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatStartInput) (*mcp.CallToolResult, CombatStartResult, error) {
		sessionID, err := service.StartCombat(ctx, input.LocationID)
		if err != nil {
			return nil, CombatStartResult{}, err
		}
		return nil, CombatStartResult{SessionID: sessionID}, nil
	}
}

// CombatantInput represents the MCP tool input for adding a combatant.
type CombatantInput struct {
	ActorID         string   `json:"actor_id" jsonschema:"entity id of the actor"`
	Type            string   `json:"type" jsonschema:"actor type: pc, ally, enemy, or neutral"`
	HPCurrent       int      `json:"hp_current" jsonschema:"current hit points"`
	HPMax           int      `json:"hp_max" jsonschema:"maximum hit points"`
	ArmorClass      int      `json:"armor_class" jsonschema:"armor class"`
	CR              string   `json:"cr,omitempty" jsonschema:"challenge rating for reward computation, enemies only"`
	Resistances     []string `json:"resistances,omitempty" jsonschema:"damage types taken at half"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty" jsonschema:"damage types taken doubled"`
	Immunities      []string `json:"immunities,omitempty" jsonschema:"damage types ignored"`
}

// CombatantResult represents the MCP tool output for adding a combatant.
type CombatantResult struct {
	ActorID string `json:"actor_id" jsonschema:"entity id of the actor"`
}

// CombatAddCombatantTool defines the MCP tool schema for adding combatants.
func CombatAddCombatantTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_add_combatant",
		Description: "Registers an actor with the initiating combat session",
	}
}

// CombatAddCombatantHandler executes an add-combatant request.
func CombatAddCombatantHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatantInput, CombatantResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatantInput) (*mcp.CallToolResult, CombatantResult, error) {
		responses := map[combat.DamageType]combat.Response{}
		for _, dt := range input.Resistances {
			responses[combat.DamageType(dt)] = combat.ResponseResistant
		}
		for _, dt := range input.Vulnerabilities {
			responses[combat.DamageType(dt)] = combat.ResponseVulnerable
		}
		for _, dt := range input.Immunities {
			responses[combat.DamageType(dt)] = combat.ResponseImmune
		}
		err := service.AddCombatant(combat.Combatant{
			ActorID:    input.ActorID,
			Type:       actorType(input.Type),
			HPCurrent:  input.HPCurrent,
			HPMax:      input.HPMax,
			ArmorClass: input.ArmorClass,
			CR:         input.CR,
			Responses:  responses,
		})
		if err != nil {
			return nil, CombatantResult{}, err
		}
		return nil, CombatantResult{ActorID: input.ActorID}, nil
	}
}

// CombatSetInitiativeInput represents the MCP tool input for an initiative roll.
type CombatSetInitiativeInput struct {
	ActorID string `json:"actor_id" jsonschema:"entity id of the actor"`
	Score   int    `json:"score" jsonschema:"initiative score"`
}

// CombatSetInitiativeResult represents the MCP tool output for an initiative roll.
type CombatSetInitiativeResult struct {
	ActorID string `json:"actor_id" jsonschema:"entity id of the actor"`
	Score   int    `json:"score" jsonschema:"recorded initiative score"`
}

// CombatSetInitiativeTool defines the MCP tool schema for initiative rolls.
func CombatSetInitiativeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_set_initiative",
		Description: "Records an actor's initiative score during the initiating phase",
	}
}

// CombatSetInitiativeHandler executes an initiative request.
func CombatSetInitiativeHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatSetInitiativeInput, CombatSetInitiativeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatSetInitiativeInput) (*mcp.CallToolResult, CombatSetInitiativeResult, error) {
		if err := service.SetInitiative(input.ActorID, input.Score); err != nil {
			return nil, CombatSetInitiativeResult{}, err
		}
		return nil, CombatSetInitiativeResult{ActorID: input.ActorID, Score: input.Score}, nil
	}
}

// CombatBeginInput represents the MCP tool input for beginning combat.
type CombatBeginInput struct{}

// CombatBeginResult represents the MCP tool output for beginning combat.
type CombatBeginResult struct {
	Order []string `json:"order" jsonschema:"actor ids in initiative order"`
	Round int      `json:"round" jsonschema:"current round number"`
}

// CombatBeginTool defines the MCP tool schema for beginning combat.
func CombatBeginTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_begin",
		Description: "Fixes the initiative order and transitions the session to active",
	}
}

// CombatBeginHandler executes a combat begin request.
func CombatBeginHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatBeginInput, CombatBeginResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CombatBeginInput) (*mcp.CallToolResult, CombatBeginResult, error) {
		if err := service.BeginCombat(); err != nil {
			return nil, CombatBeginResult{}, err
		}
		session, err := service.CombatSession()
		if err != nil {
			return nil, CombatBeginResult{}, err
		}
		order := make([]string, 0, len(session.Initiative))
		for _, entry := range session.Initiative {
			order = append(order, entry.ActorID)
		}
		return nil, CombatBeginResult{Order: order, Round: session.Round}, nil
	}
}

// CombatDamageInput represents the MCP tool input for applying damage.
type CombatDamageInput struct {
	ActorID    string `json:"actor_id" jsonschema:"entity id of the target"`
	Amount     int    `json:"amount" jsonschema:"raw damage before the target's damage table"`
	DamageType string `json:"damage_type" jsonschema:"damage type, e.g. slashing, fire, poison"`
}

// CombatDamageResult represents the MCP tool output for applying damage.
type CombatDamageResult struct {
	ActorID   string `json:"actor_id" jsonschema:"entity id of the target"`
	Effective int    `json:"effective" jsonschema:"damage applied after resistance, vulnerability, or immunity"`
	HPCurrent int    `json:"hp_current" jsonschema:"target hit points after the damage"`
	Defeated  bool   `json:"defeated" jsonschema:"whether the target dropped to zero"`
}

// CombatDamageTool defines the MCP tool schema for applying damage.
func CombatDamageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_damage",
		Description: "Deals typed damage to an actor, honoring resistances, vulnerabilities, and immunities",
	}
}

// CombatDamageHandler executes a damage request.
func CombatDamageHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatDamageInput, CombatDamageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatDamageInput) (*mcp.CallToolResult, CombatDamageResult, error) {
		effective, err := service.ApplyDamage(input.ActorID, input.Amount, combat.DamageType(input.DamageType))
		if err != nil {
			return nil, CombatDamageResult{}, err
		}
		session, err := service.CombatSession()
		if err != nil {
			return nil, CombatDamageResult{}, err
		}
		target := session.Combatants[input.ActorID]
		return nil, CombatDamageResult{
			ActorID:   input.ActorID,
			Effective: effective,
			HPCurrent: target.HPCurrent,
			Defeated:  target.Defeated(),
		}, nil
	}
}

// CombatSurrenderInput represents the MCP tool input for a surrender.
type CombatSurrenderInput struct {
	ActorID string `json:"actor_id" jsonschema:"entity id of the surrendering actor"`
}

// CombatSurrenderResult represents the MCP tool output for a surrender.
type CombatSurrenderResult struct {
	ActorID string `json:"actor_id" jsonschema:"entity id of the surrendering actor"`
}

// CombatSurrenderTool defines the MCP tool schema for surrenders.
func CombatSurrenderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_surrender",
		Description: "Marks an actor as surrendered; a surrendered enemy awards the same XP as a defeated one",
	}
}

// CombatSurrenderHandler executes a surrender request.
func CombatSurrenderHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatSurrenderInput, CombatSurrenderResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatSurrenderInput) (*mcp.CallToolResult, CombatSurrenderResult, error) {
		if err := service.Surrender(input.ActorID); err != nil {
			return nil, CombatSurrenderResult{}, err
		}
		return nil, CombatSurrenderResult{ActorID: input.ActorID}, nil
	}
}

// CombatAdvanceTurnInput represents the MCP tool input for advancing a turn.
type CombatAdvanceTurnInput struct{}

// CombatAdvanceTurnResult represents the MCP tool output for advancing a turn.
type CombatAdvanceTurnResult struct {
	ActorID  string `json:"actor_id" jsonschema:"actor whose turn it now is"`
	NewRound bool   `json:"new_round" jsonschema:"whether a new round began"`
}

// CombatAdvanceTurnTool defines the MCP tool schema for advancing turns.
func CombatAdvanceTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_advance_turn",
		Description: "Moves to the next living actor; a completed round advances the in-game clock",
	}
}

// CombatAdvanceTurnHandler executes an advance-turn request.
func CombatAdvanceTurnHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatAdvanceTurnInput, CombatAdvanceTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CombatAdvanceTurnInput) (*mcp.CallToolResult, CombatAdvanceTurnResult, error) {
		actorID, wrapped, err := service.AdvanceTurn(ctx)
		if err != nil {
			return nil, CombatAdvanceTurnResult{}, err
		}
		return nil, CombatAdvanceTurnResult{ActorID: actorID, NewRound: wrapped}, nil
	}
}

// CombatEndInput represents the MCP tool input for ending combat.
type CombatEndInput struct {
	Outcome string   `json:"outcome" jsonschema:"free-form outcome description kept with the archive"`
	PartyID []string `json:"party_ids,omitempty" jsonschema:"character ids splitting the XP award; defaults to every player character"`
}

// CombatEndResult represents the MCP tool output for ending combat.
type CombatEndResult struct {
	XPAwarded int `json:"xp_awarded" jsonschema:"total XP granted for defeated and surrendered enemies"`
}

// CombatEndTool defines the MCP tool schema for ending combat.
func CombatEndTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_end",
		Description: "Resolves the session, awards XP for defeated and surrendered enemies, and archives it",
	}
}

// CombatEndHandler executes an end-combat request.
func CombatEndHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatEndInput, CombatEndResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatEndInput) (*mcp.CallToolResult, CombatEndResult, error) {
		xp, err := service.EndCombat(ctx, input.Outcome, input.PartyID)
		if err != nil {
			return nil, CombatEndResult{}, err
		}
		return nil, CombatEndResult{XPAwarded: xp}, nil
	}
}

// CombatFleeInput represents the MCP tool input for fleeing combat.
type CombatFleeInput struct {
	Outcome string `json:"outcome" jsonschema:"free-form outcome description kept with the archive"`
}

// CombatFleeResult represents the MCP tool output for fleeing combat.
type CombatFleeResult struct {
	XPAwarded int `json:"xp_awarded" jsonschema:"always zero for a fled encounter"`
}

// CombatFleeTool defines the MCP tool schema for fleeing combat.
func CombatFleeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_flee",
		Description: "Abandons the session with no rewards and archives it",
	}
}

// CombatFleeHandler executes a flee request.
func CombatFleeHandler(service *keeper.Service) mcp.ToolHandlerFor[CombatFleeInput, CombatFleeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatFleeInput) (*mcp.CallToolResult, CombatFleeResult, error) {
		if err := service.FleeCombat(ctx, input.Outcome); err != nil {
			return nil, CombatFleeResult{}, err
		}
		return nil, CombatFleeResult{XPAwarded: 0}, nil
	}
}

// CombatSessionResource defines the readable combat session resource.
func CombatSessionResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "combat_session",
		Title:       "Combat Session",
		Description: "The combat session in progress, including initiative order and combatant state",
		MIMEType:    "application/json",
		URI:         "combat://session",
	}
}

// combatantPayload represents one combatant in the session resource.
type combatantPayload struct {
	ActorID   string   `json:"actor_id"`
	Type      string   `json:"type"`
	HPCurrent int      `json:"hp_current"`
	HPMax     int      `json:"hp_max"`
	Status    []string `json:"status,omitempty"`
}

// sessionPayload represents the combat session resource payload.
type sessionPayload struct {
	SessionID  string             `json:"session_id"`
	LocationID string             `json:"location_id"`
	Phase      string             `json:"phase"`
	Round      int                `json:"round"`
	Order      []string           `json:"order"`
	Combatants []combatantPayload `json:"combatants"`
}

// CombatSessionResourceHandler returns the readable combat session.
func CombatSessionResourceHandler(service *keeper.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		session, err := service.CombatSession()
		if err != nil {
			return nil, fmt.Errorf("combat session read failed: %w", err)
		}
		payload := sessionPayload{
			SessionID:  session.ID,
			LocationID: session.LocationID,
			Phase:      string(session.Phase),
			Round:      session.Round,
			Order:      []string{},
			Combatants: []combatantPayload{},
		}
		for _, entry := range session.Initiative {
			payload.Order = append(payload.Order, entry.ActorID)
			combatant := session.Combatants[entry.ActorID]
			payload.Combatants = append(payload.Combatants, combatantPayload{
				ActorID:   combatant.ActorID,
				Type:      string(combatant.Type),
				HPCurrent: combatant.HPCurrent,
				HPMax:     combatant.HPMax,
				Status:    combatant.Status,
			})
		}
		return jsonResourceResult(req, CombatSessionResource().URI, payload)
	}
}

func actorType(value string) combat.ActorType {
	switch value {
	case "pc":
		return combat.ActorPC
	case "ally":
		return combat.ActorAlly
	case "enemy":
		return combat.ActorEnemy
	default:
		return combat.ActorNeutral
	}
}
