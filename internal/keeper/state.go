package keeper

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/storage"
	"github.com/louisbranch/worldkeeper/internal/world"
)

func marshalState(state world.State) ([]byte, error) {
	doc, err := json.Marshal(state.Tree)
	if err != nil {
		return nil, fmt.Errorf("marshal state tree: %w", err)
	}
	return doc, nil
}

func stateFromSnapshot(snapshot storage.Snapshot) (world.State, error) {
	var tree map[string]map[string]any
	if err := json.Unmarshal(snapshot.Document, &tree); err != nil {
		return world.State{}, fmt.Errorf("unmarshal snapshot %d: %w", snapshot.Version, err)
	}
	state := world.NewState()
	state.Version = snapshot.Version
	for domain, doc := range tree {
		state.Tree[domain] = doc
	}
	return state, nil
}

// intField reads a numeric field from a decoded JSON object, tolerating both
// int and float64 representations.
func intField(doc map[string]any, key string) int {
	switch v := doc[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func characterDoc(state world.State, characterID string) (map[string]any, error) {
	doc, ok := state.Tree[world.DomainPlayerCharacter][characterID].(map[string]any)
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeEntityUnknownRef,
			fmt.Sprintf("character %s is not present in player_character_data", characterID),
			map[string]string{"id": characterID})
	}
	return doc, nil
}
