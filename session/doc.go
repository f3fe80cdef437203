// Package session persists the signed-in user state across restarts.
//
// A [Snapshot] is the full persisted record: identity fields, the login
// type that produced them, and the logged-in flag. The [Store] keeps one
// cached snapshot in memory and writes every mutation through to a
// [storage.KV] backend as a single versioned binary blob, so readers can
// never observe a partially written session.
//
// # Architecture boundaries
//
// This package owns the snapshot schema, its binary encoding, and the
// write-through cache. It does NOT decide when a session is created or
// cleared; the orchestrator drives those transitions.
//
// # What this package must NOT do
//
//   - Talk to an identity provider.
//   - Interpret credentials or verification codes.
//   - Expose partially written snapshots to readers.
package session
