// Package goAuthClient provides device-side authentication orchestration:
// phone code verification with resend countdowns, email and federated
// sign-in, durable session snapshots, and identifier discovery for sign-in
// suggestions.
//
// The package is designed for concurrent UI-driven workloads: Orchestrator
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Orchestrator], [Builder],
// [Config], and value types (Challenge, UserProfile, MetricsSnapshot,
// etc.). Session encoding lives in session, countdown and code handling in
// otp, identifier collection in discovery, storage backends in storage, and
// audit dispatch under internal/.
//
// # What this package must NOT do
//
//   - Talk to an identity backend directly; all remote calls go through the
//     caller-supplied [IdentityProvider].
//   - Expose storage backends or encoding details in its public API.
//   - Import any sub-package that re-imports goAuthClient (no import cycles).
//
// # Concurrency contract
//
// At most one phone verification challenge is in flight. A newer challenge
// supersedes an older one, and provider completions that arrive for a
// superseded challenge are discarded rather than applied. The session store
// persists every mutation before the in-memory state changes.
package goAuthClient
