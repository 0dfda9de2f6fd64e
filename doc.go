// Package lmsAuth is the authentication core of the learning-platform backend: activation
// of new principals, credential login, short-lived access tokens, rotating refresh tokens,
// a Redis session cache as the authoritative session record, and role-based authorization.
//
// Engine methods are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Session model
//
// A login writes a snapshot of the principal into the session cache for seven days. Every
// authenticated request needs both a valid access token and a live cache entry; a missing
// entry rejects the request even when the token signature is still valid. Rotation
// ([Engine.Refresh]) re-signs the pair and rewrites the entry. Logout deletes it.
//
// # Architecture boundaries
//
// lmsAuth is the public surface. It exposes [Engine], [Builder], [Config], the principal
// model and the error taxonomy. Flow orchestration and audit dispatch live under internal/.
// Transport concerns (cookies on the wire, routing, JSON envelopes) live in middleware,
// respond and api.
//
// # What this package must NOT do
//
//   - Keep process-wide clients or secrets; everything is injected through [Builder].
//   - Return password hashes from any exported method.
//   - Import a sub-package that re-imports lmsAuth (no import cycles).
package lmsAuth
