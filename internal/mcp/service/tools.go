package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
	"github.com/louisbranch/worldkeeper/internal/mcp/domain"
)

func registerWorldTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.WorldApplyPatchTool(), domain.WorldApplyPatchHandler(service))
	mcp.AddTool(mcpServer, domain.WorldGetTool(), domain.WorldGetHandler(service))
	mcp.AddTool(mcpServer, domain.RecoveryApplyTool(), domain.RecoveryApplyHandler(service))
}

func registerRegistryTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.EntityRegisterTool(), domain.EntityRegisterHandler(service))
	mcp.AddTool(mcpServer, domain.EntityValidateTool(), domain.EntityValidateHandler(service))
}

func registerCombatTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.CombatStartTool(), domain.CombatStartHandler(service))
	mcp.AddTool(mcpServer, domain.CombatAddCombatantTool(), domain.CombatAddCombatantHandler(service))
	mcp.AddTool(mcpServer, domain.CombatSetInitiativeTool(), domain.CombatSetInitiativeHandler(service))
	mcp.AddTool(mcpServer, domain.CombatBeginTool(), domain.CombatBeginHandler(service))
	mcp.AddTool(mcpServer, domain.CombatDamageTool(), domain.CombatDamageHandler(service))
	mcp.AddTool(mcpServer, domain.CombatSurrenderTool(), domain.CombatSurrenderHandler(service))
	mcp.AddTool(mcpServer, domain.CombatAdvanceTurnTool(), domain.CombatAdvanceTurnHandler(service))
	mcp.AddTool(mcpServer, domain.CombatEndTool(), domain.CombatEndHandler(service))
	mcp.AddTool(mcpServer, domain.CombatFleeTool(), domain.CombatFleeHandler(service))
}

func registerProgressionTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.XPAwardTool(), domain.XPAwardHandler(service))
	mcp.AddTool(mcpServer, domain.LevelUpCheckTool(), domain.LevelUpCheckHandler(service))
	mcp.AddTool(mcpServer, domain.LevelUpApplyTool(), domain.LevelUpApplyHandler(service))
}

func registerReputationTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.ReputationResolveTool(), domain.ReputationResolveHandler(service))
}

func registerPlanningTools(mcpServer *mcp.Server, service *keeper.Service) {
	mcp.AddTool(mcpServer, domain.PlanFailureTool(), domain.PlanFailureHandler(service))
	mcp.AddTool(mcpServer, domain.PlanCheckTool(), domain.PlanCheckHandler(service))
	mcp.AddTool(mcpServer, domain.PlanBreakTool(), domain.PlanBreakHandler(service))
}

// registerResources registers the readable campaign state resources.
func registerResources(mcpServer *mcp.Server, service *keeper.Service) {
	mcpServer.AddResource(domain.WorldSnapshotResource(), domain.WorldSnapshotResourceHandler(service))
	mcpServer.AddResource(domain.ChangelogResource(), domain.ChangelogResourceHandler(service))
	mcpServer.AddResource(domain.CombatSessionResource(), domain.CombatSessionResourceHandler(service))
}
