package world

import "strings"

// FieldKind constrains the value shape accepted at a schema-declared path.
type FieldKind int

const (
	// FieldAny accepts any value shape.
	FieldAny FieldKind = iota
	// FieldList requires the field to only ever be supplied as a full list
	// or mutated through an append operation.
	FieldList
	// FieldEntityMap requires a keyed-object map, typically an entity entry.
	FieldEntityMap
)

type schemaRule struct {
	pattern []string
	kind    FieldKind
	// stringStatus enables the documented legacy accommodation: a single
	// string supplied where a keyed-object map was expected is wrapped as
	// {"status": value} and merged onto the existing entry.
	stringStatus bool
}

// Schema is the per-path constraint table consulted during patch application.
// It is fixed at store construction time; patches are validated structurally
// instead of relying on ad hoc runtime type inspection.
type Schema struct {
	rules []schemaRule
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{}
}

// DefaultSchema returns the campaign schema: mission and memory collections
// are always-list, and NPC entries are keyed-object maps with the legacy
// string-to-status tolerance.
func DefaultSchema() *Schema {
	s := NewSchema()
	s.Declare(DomainCustomCampaign+".active_missions", FieldList)
	s.Declare(DomainCustomCampaign+".completed_missions", FieldList)
	s.Declare(DomainCustomCampaign+".core_memories", FieldList)
	s.Declare(DomainPlayerCharacter+".*.inventory", FieldList)
	s.Declare(DomainPlayerCharacter+".*.status_effects", FieldList)
	s.DeclareEntityMap(DomainNPC+".*", true)
	s.DeclareEntityMap(DomainFaction+".*", false)
	return s
}

// Declare registers a field kind for a dot-path pattern. A "*" segment
// matches exactly one path segment.
func (s *Schema) Declare(pattern string, kind FieldKind) {
	s.rules = append(s.rules, schemaRule{pattern: strings.Split(pattern, "."), kind: kind})
}

// DeclareEntityMap registers a keyed-object map constraint, optionally with
// the legacy string-to-status coercion enabled.
func (s *Schema) DeclareEntityMap(pattern string, stringStatus bool) {
	s.rules = append(s.rules, schemaRule{
		pattern:      strings.Split(pattern, "."),
		kind:         FieldEntityMap,
		stringStatus: stringStatus,
	})
}

// kindAt resolves the declared kind for a path. The second result reports
// whether the legacy string-to-status coercion applies at the path.
func (s *Schema) kindAt(path []string) (FieldKind, bool) {
	for _, rule := range s.rules {
		if matchPattern(rule.pattern, path) {
			return rule.kind, rule.stringStatus
		}
	}
	return FieldAny, false
}

func matchPattern(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, segment := range pattern {
		if segment == "*" {
			continue
		}
		if segment != path[i] {
			return false
		}
	}
	return true
}
