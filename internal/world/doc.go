// Package world owns the authoritative campaign state tree.
//
// State is a nested document keyed by top-level domains. It is mutated only
// through patch application: partial documents merged non-destructively, with
// explicit delete and append operations validated against a per-path schema
// table. Every successful application bumps the state version by exactly one
// and records an append-only changelog entry; prior snapshots stay reachable
// for audit and recovery.
package world
