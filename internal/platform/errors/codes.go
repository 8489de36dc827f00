// Package errors provides structured error handling for the engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// World-state errors
	CodeSchemaViolation Code = "SCHEMA_VIOLATION"
	CodeUnknownDomain   Code = "UNKNOWN_DOMAIN"
	CodeStaleVersion    Code = "STALE_VERSION"
	CodePathNotFound    Code = "PATH_NOT_FOUND"
	CodeEmptyPatch      Code = "EMPTY_PATCH"

	// Entity registry errors
	CodeEntityInvalidKind Code = "ENTITY_INVALID_KIND"
	CodeEntityEmptyName   Code = "ENTITY_EMPTY_NAME"
	CodeEntityInvalidID   Code = "ENTITY_INVALID_ID"
	CodeEntityUnknownRef  Code = "ENTITY_UNKNOWN_REFERENCE"

	// Combat errors
	CodeInvalidCombatState      Code = "INVALID_COMBAT_STATE"
	CodeCombatInvalidTransition Code = "COMBAT_INVALID_TRANSITION"
	CodeCombatUnknownActor      Code = "COMBAT_UNKNOWN_ACTOR"
	CodeCombatInitiativeMissing Code = "COMBAT_INITIATIVE_MISSING"
	CodeCombatNoActiveSession   Code = "COMBAT_NO_ACTIVE_SESSION"
	CodeCombatSessionExists     Code = "COMBAT_SESSION_EXISTS"
	CodeDuplicateReward         Code = "DUPLICATE_REWARD"
	CodeInvalidChallengeRating  Code = "INVALID_CHALLENGE_RATING"

	// Progression errors
	CodeProgressionLevelOutOfRange Code = "PROGRESSION_LEVEL_OUT_OF_RANGE"
	CodeProgressionNegativeAward   Code = "PROGRESSION_NEGATIVE_AWARD"

	// Planning errors
	CodeFreezeUnknownReason Code = "FREEZE_UNKNOWN_BREAK_REASON"
	CodeFreezeUnknownTopic  Code = "FREEZE_UNKNOWN_TOPIC"

	// Recovery errors
	CodeRecoveryMalformedScript Code = "RECOVERY_MALFORMED_SCRIPT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSchemaViolation,
		CodeUnknownDomain,
		CodeEmptyPatch,
		CodeEntityInvalidKind,
		CodeEntityEmptyName,
		CodeEntityInvalidID,
		CodeCombatUnknownActor,
		CodeInvalidChallengeRating,
		CodeProgressionLevelOutOfRange,
		CodeProgressionNegativeAward,
		CodeFreezeUnknownReason,
		CodeRecoveryMalformedScript:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeInvalidCombatState,
		CodeCombatInvalidTransition,
		CodeCombatInitiativeMissing,
		CodeCombatNoActiveSession,
		CodeCombatSessionExists,
		CodeDuplicateReward:
		return codes.FailedPrecondition

	// Aborted - optimistic concurrency conflicts
	case CodeStaleVersion:
		return codes.Aborted

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodePathNotFound,
		CodeEntityUnknownRef,
		CodeFreezeUnknownTopic:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
