// Package domain defines the MCP tools and resources through which the
// external author reads and mutates campaign state.
package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/worldkeeper/internal/keeper"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// WorldApplyPatchInput represents the MCP tool input for applying a patch.
type WorldApplyPatchInput struct {
	BaseVersion uint64          `json:"base_version" jsonschema:"game state version the patch was written against"`
	Patch       json.RawMessage `json:"patch" jsonschema:"patch document rooted at top-level domains"`
}

// WorldApplyPatchResult represents the MCP tool output for applying a patch.
type WorldApplyPatchResult struct {
	Version  uint64 `json:"version" jsonschema:"committed game state version"`
	ChangeID string `json:"change_id" jsonschema:"changelog entry identifier"`
}

// WorldApplyPatchTool defines the MCP tool schema for patch application.
func WorldApplyPatchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_apply_patch",
		Description: "Merges a patch document into the world state. Unmentioned keys survive; __DELETE__ removes a key; {\"append\": value} extends a list.",
	}
}

// WorldApplyPatchHandler executes a patch application request.
func WorldApplyPatchHandler(service *keeper.Service) mcp.ToolHandlerFor[WorldApplyPatchInput, WorldApplyPatchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldApplyPatchInput) (*mcp.CallToolResult, WorldApplyPatchResult, error) {
		var doc map[string]any
		if err := json.Unmarshal(input.Patch, &doc); err != nil {
			return nil, WorldApplyPatchResult{}, fmt.Errorf("patch is not a JSON object: %w", err)
		}
		state, entry, err := service.ApplyPatch(ctx, world.Patch{BaseVersion: input.BaseVersion, Document: doc})
		if err != nil {
			return nil, WorldApplyPatchResult{}, err
		}
		return nil, WorldApplyPatchResult{Version: state.Version, ChangeID: entry.ID}, nil
	}
}

// WorldGetInput represents the MCP tool input for a dot-path read.
type WorldGetInput struct {
	Path string `json:"path" jsonschema:"dot path rooted at a top-level domain, e.g. npc_data.npc_grom_001.status"`
}

// WorldGetResult represents the MCP tool output for a dot-path read.
type WorldGetResult struct {
	Path  string          `json:"path" jsonschema:"requested path"`
	Value json.RawMessage `json:"value" jsonschema:"value at the path"`
}

// WorldGetTool defines the MCP tool schema for dot-path reads.
func WorldGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "world_get",
		Description: "Reads a value from the current world snapshot by dot path",
	}
}

// WorldGetHandler executes a dot-path read.
func WorldGetHandler(service *keeper.Service) mcp.ToolHandlerFor[WorldGetInput, WorldGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input WorldGetInput) (*mcp.CallToolResult, WorldGetResult, error) {
		raw, err := service.Get(input.Path)
		if err != nil {
			return nil, WorldGetResult{}, err
		}
		return nil, WorldGetResult{Path: input.Path, Value: json.RawMessage(raw)}, nil
	}
}

// RecoveryApplyInput represents the MCP tool input for a recovery script.
type RecoveryApplyInput struct {
	Script string `json:"script" jsonschema:"GOD_MODE_SET script with one path = json-literal assignment per line"`
}

// RecoveryApplyResult represents the MCP tool output for a recovery script.
type RecoveryApplyResult struct {
	Version uint64 `json:"version" jsonschema:"committed game state version"`
}

// RecoveryApplyTool defines the MCP tool schema for recovery scripts.
func RecoveryApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "recovery_apply",
		Description: "Applies an out-of-band GOD_MODE_SET correction script to the world state",
	}
}

// RecoveryApplyHandler executes a recovery script.
func RecoveryApplyHandler(service *keeper.Service) mcp.ToolHandlerFor[RecoveryApplyInput, RecoveryApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecoveryApplyInput) (*mcp.CallToolResult, RecoveryApplyResult, error) {
		state, err := service.ApplyRecovery(ctx, input.Script)
		if err != nil {
			return nil, RecoveryApplyResult{}, err
		}
		return nil, RecoveryApplyResult{Version: state.Version}, nil
	}
}

// WorldSnapshotResource defines the readable world snapshot resource.
func WorldSnapshotResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "world_snapshot",
		Title:       "World Snapshot",
		Description: "The current world state document with its version",
		MIMEType:    "application/json",
		URI:         "worldstate://snapshot",
	}
}

// snapshotPayload represents the world snapshot resource payload.
type snapshotPayload struct {
	Version uint64          `json:"version"`
	State   json.RawMessage `json:"state"`
}

// WorldSnapshotResourceHandler returns the readable world snapshot.
func WorldSnapshotResourceHandler(service *keeper.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		version, doc, err := service.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("world snapshot failed: %w", err)
		}
		return jsonResourceResult(req, WorldSnapshotResource().URI, snapshotPayload{
			Version: version,
			State:   doc,
		})
	}
}

// ChangelogResource defines the readable changelog tail resource.
func ChangelogResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "world_changelog",
		Title:       "Changelog",
		Description: "The most recent applied changes, oldest first",
		MIMEType:    "application/json",
		URI:         "worldstate://changelog",
	}
}

// changelogEntry represents one changelog entry in the resource payload.
type changelogEntry struct {
	ID          string          `json:"id"`
	Seq         uint64          `json:"seq"`
	Author      string          `json:"author"`
	BaseVersion uint64          `json:"base_version"`
	NewVersion  uint64          `json:"new_version"`
	Patch       json.RawMessage `json:"patch"`
}

// changelogPayload represents the changelog resource payload.
type changelogPayload struct {
	Entries []changelogEntry `json:"entries"`
}

// changelogTailLimit caps the resource payload size.
const changelogTailLimit = 50

// ChangelogResourceHandler returns the readable changelog tail.
func ChangelogResourceHandler(service *keeper.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		payload := changelogPayload{Entries: []changelogEntry{}}
		for _, entry := range service.Changelog(changelogTailLimit) {
			payload.Entries = append(payload.Entries, changelogEntry{
				ID:          entry.ID,
				Seq:         entry.Seq,
				Author:      string(entry.Author),
				BaseVersion: entry.BaseVersion,
				NewVersion:  entry.NewVersion,
				Patch:       json.RawMessage(entry.PatchJSON),
			})
		}
		return jsonResourceResult(req, ChangelogResource().URI, payload)
	}
}

// jsonResourceResult marshals a payload into a single-content resource result.
func jsonResourceResult(req *mcp.ReadResourceRequest, fallbackURI string, payload any) (*mcp.ReadResourceResult, error) {
	uri := fallbackURI
	if req != nil && req.Params != nil && req.Params.URI != "" {
		uri = req.Params.URI
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
