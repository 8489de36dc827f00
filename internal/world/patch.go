package world

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// DeleteSentinel removes a key entirely from its parent when supplied as a
// patch value. After deletion the key is absent from serialization, not null.
const DeleteSentinel = "__DELETE__"

// appendKey marks the tagged append variant {"append": X}.
const appendKey = "append"

// Patch is a partial update to the world tree. Keys are rooted at a
// top-level domain; values are scalars, nested objects, the delete sentinel,
// or the tagged append variant.
type Patch struct {
	// BaseVersion is the game state version the patch was computed against.
	BaseVersion uint64
	// Document is the partial tree to merge.
	Document map[string]any
}

var (
	// ErrEmptyPatch indicates a patch with no document content.
	ErrEmptyPatch = apperrors.New(apperrors.CodeEmptyPatch, "patch document is empty")
)

func schemaViolation(path []string, message string) error {
	return apperrors.WithMetadata(apperrors.CodeSchemaViolation, message, map[string]string{
		"path": strings.Join(path, "."),
	})
}

// applyDocument merges doc into target recursively. target is always a
// working clone, so a returned error leaves the committed snapshot untouched.
func applyDocument(schema *Schema, target, doc map[string]any, path []string) error {
	for key, value := range doc {
		childPath := append(path[:len(path):len(path)], key)

		if str, ok := value.(string); ok && str == DeleteSentinel {
			delete(target, key)
			continue
		}

		if nested, ok := value.(map[string]any); ok {
			if appended, ok := appendValue(nested); ok {
				if err := applyAppend(schema, target, key, appended, childPath); err != nil {
					return err
				}
				continue
			}
			if err := applyNested(schema, target, key, nested, childPath); err != nil {
				return err
			}
			continue
		}

		if err := applySet(schema, target, key, value, childPath); err != nil {
			return err
		}
	}
	return nil
}

// appendValue reports whether nested is the tagged append variant.
func appendValue(nested map[string]any) (any, bool) {
	if len(nested) != 1 {
		return nil, false
	}
	value, ok := nested[appendKey]
	return value, ok
}

func applyNested(schema *Schema, target map[string]any, key string, nested map[string]any, path []string) error {
	kind, _ := schema.kindAt(path)
	if kind == FieldList {
		return schemaViolation(path, fmt.Sprintf("field %s is declared list-typed, got object", strings.Join(path, ".")))
	}

	existing, ok := target[key].(map[string]any)
	if !ok {
		// Entities are created on first reference; a scalar previously
		// stored at this key is overwritten by the new object.
		existing = map[string]any{}
	}
	if err := applyDocument(schema, existing, nested, path); err != nil {
		return err
	}
	target[key] = existing
	return nil
}

func applySet(schema *Schema, target map[string]any, key string, value any, path []string) error {
	kind, stringStatus := schema.kindAt(path)
	switch kind {
	case FieldList:
		if _, ok := value.([]any); !ok {
			return schemaViolation(path, fmt.Sprintf("field %s is declared list-typed, got %T", strings.Join(path, "."), value))
		}
	case FieldEntityMap:
		str, isString := value.(string)
		if !isString {
			return schemaViolation(path, fmt.Sprintf("field %s expects a keyed-object map, got %T", strings.Join(path, "."), value))
		}
		if !stringStatus {
			return schemaViolation(path, fmt.Sprintf("field %s expects a keyed-object map, got string", strings.Join(path, ".")))
		}
		// Legacy accommodation: wrap the bare string as a status update
		// merged onto the existing entry, preserving its other fields.
		existing, ok := target[key].(map[string]any)
		if !ok {
			existing = map[string]any{}
		}
		existing["status"] = str
		target[key] = existing
		return nil
	}
	target[key] = cloneValue(value)
	return nil
}

func applyAppend(schema *Schema, target map[string]any, key string, value any, path []string) error {
	kind, _ := schema.kindAt(path)
	existing, hasList := target[key].([]any)
	if _, exists := target[key]; exists && !hasList {
		return schemaViolation(path, fmt.Sprintf("cannot append to non-list field %s", strings.Join(path, ".")))
	}
	if !hasList && kind != FieldList {
		return schemaViolation(path, fmt.Sprintf("append target %s is not declared list-typed", strings.Join(path, ".")))
	}

	if elements, ok := value.([]any); ok {
		for _, element := range elements {
			existing = append(existing, cloneValue(element))
		}
	} else {
		existing = append(existing, cloneValue(value))
	}
	target[key] = existing
	return nil
}
