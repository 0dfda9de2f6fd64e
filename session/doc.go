// Package session provides the Redis-backed session cache: one entry per principal,
// holding a JSON snapshot of that principal under a TTL.
//
// # Cache semantics
//
// The cache is the only source of truth for "is this session still valid". A missing
// entry ([ErrNotFound]) means the principal must log in again, even if the presented
// token still carries a valid signature.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Snapshot] model. It does NOT
// interpret tokens or enforce authentication policy; those belong to the Engine.
//
// # What this package must NOT do
//
//   - Import lmsAuth or jwt (no upward imports).
//   - Store password hashes or any other secret in a [Snapshot].
//   - Serialize concurrent writers. Last write wins.
package session
