// Package registry assigns and validates entity identifiers.
//
// Identifiers follow {prefix}_{slug}_{seq:03d} and are never reassigned once
// issued, even if the entity is later deleted and recreated under the same
// name. Sequence numbers increment per entity kind.
package registry

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// Kind identifies the type of an addressable game object.
type Kind int

const (
	// KindUnspecified represents an invalid entity kind value.
	KindUnspecified Kind = iota
	// KindPlayerCharacter is a player character.
	KindPlayerCharacter
	// KindNPC is a non-player character.
	KindNPC
	// KindLocation is a location.
	KindLocation
	// KindItem is an item.
	KindItem
	// KindFaction is a faction.
	KindFaction
)

// IDPattern is the canonical entity identifier format.
var IDPattern = regexp.MustCompile(`^(pc|npc|loc|item|faction)_[a-z0-9_]+_\d{3}$`)

var (
	// ErrInvalidKind indicates an unrecognized entity kind.
	ErrInvalidKind = apperrors.New(apperrors.CodeEntityInvalidKind, "entity kind is not recognized")
	// ErrEmptyName indicates a missing display name.
	ErrEmptyName = apperrors.New(apperrors.CodeEntityEmptyName, "entity display name is required")
)

// Prefix returns the identifier prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindPlayerCharacter:
		return "pc"
	case KindNPC:
		return "npc"
	case KindLocation:
		return "loc"
	case KindItem:
		return "item"
	case KindFaction:
		return "faction"
	default:
		return ""
	}
}

// KindFromPrefix resolves a kind from an identifier prefix.
func KindFromPrefix(prefix string) Kind {
	switch prefix {
	case "pc":
		return KindPlayerCharacter
	case "npc":
		return KindNPC
	case "loc":
		return KindLocation
	case "item":
		return KindItem
	case "faction":
		return KindFaction
	default:
		return KindUnspecified
	}
}

// Entry records an issued identifier.
type Entry struct {
	ID          string
	Kind        Kind
	DisplayName string
	Slug        string
	Seq         int
	// Deleted marks a soft-deleted entity. The identifier stays issued.
	Deleted  bool
	IssuedAt time.Time
}

// Registry issues and validates entity identifiers for one campaign.
type Registry struct {
	byID   map[string]Entry
	bySlug map[string]string // "{prefix}_{slug}" -> id
	seq    map[Kind]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byID:   map[string]Entry{},
		bySlug: map[string]string{},
		seq:    map[Kind]int{},
	}
}

// Register issues an identifier for the entity, or returns the existing one.
// Re-registering an entity that already carries an identifier is a no-op.
func (r *Registry) Register(kind Kind, displayName string, now time.Time) (string, error) {
	if kind.Prefix() == "" {
		return "", ErrInvalidKind
	}
	slug := Slugify(displayName)
	if slug == "" {
		return "", ErrEmptyName
	}

	slugKey := kind.Prefix() + "_" + slug
	if existing, ok := r.bySlug[slugKey]; ok {
		return existing, nil
	}

	r.seq[kind]++
	entityID := fmt.Sprintf("%s_%s_%03d", kind.Prefix(), slug, r.seq[kind])
	r.byID[entityID] = Entry{
		ID:          entityID,
		Kind:        kind,
		DisplayName: strings.TrimSpace(displayName),
		Slug:        slug,
		Seq:         r.seq[kind],
		IssuedAt:    now.UTC(),
	}
	r.bySlug[slugKey] = entityID
	return entityID, nil
}

// Adopt records an identifier that was issued elsewhere, e.g. one referenced
// for the first time in a patch. The sequence counter advances so later
// registrations never collide with adopted identifiers.
func (r *Registry) Adopt(entityID string, now time.Time) error {
	if !IDPattern.MatchString(entityID) {
		return apperrors.WithMetadata(apperrors.CodeEntityInvalidID,
			fmt.Sprintf("identifier %q does not match the entity id format", entityID),
			map[string]string{"id": entityID})
	}
	if _, ok := r.byID[entityID]; ok {
		return nil
	}

	prefix := entityID[:strings.Index(entityID, "_")]
	kind := KindFromPrefix(prefix)
	slug := entityID[len(prefix)+1 : len(entityID)-4]
	seq := parseSeq(entityID)

	r.byID[entityID] = Entry{
		ID:       entityID,
		Kind:     kind,
		Slug:     slug,
		Seq:      seq,
		IssuedAt: now.UTC(),
	}
	r.bySlug[prefix+"_"+slug] = entityID
	if seq > r.seq[kind] {
		r.seq[kind] = seq
	}
	return nil
}

func parseSeq(entityID string) int {
	seq := 0
	for _, c := range entityID[len(entityID)-3:] {
		seq = seq*10 + int(c-'0')
	}
	return seq
}

// ValidateReference reports whether an identifier exists in the registry.
// Relationship edges must only reference known identifiers.
func (r *Registry) ValidateReference(entityID string) bool {
	_, ok := r.byID[entityID]
	return ok
}

// MarkDeleted soft-deletes an entity. The identifier is never reassigned.
func (r *Registry) MarkDeleted(entityID string) error {
	entry, ok := r.byID[entityID]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeEntityUnknownRef,
			fmt.Sprintf("identifier %q is not registered", entityID),
			map[string]string{"id": entityID})
	}
	entry.Deleted = true
	r.byID[entityID] = entry
	return nil
}

// Entries returns all issued entries, including soft-deleted ones.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.byID))
	for _, entry := range r.byID {
		out = append(out, entry)
	}
	return out
}

// Restore seeds the registry from persisted entries.
func (r *Registry) Restore(entries []Entry) {
	for _, entry := range entries {
		r.byID[entry.ID] = entry
		r.bySlug[entry.Kind.Prefix()+"_"+entry.Slug] = entry.ID
		if entry.Seq > r.seq[entry.Kind] {
			r.seq[entry.Kind] = entry.Seq
		}
	}
}
