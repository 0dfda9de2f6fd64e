// Package jwt signs and verifies the compact tokens used by lmsAuth: access tokens,
// refresh tokens and activation tickets.
//
// # Token classes
//
// Every class is a [Kind] with its own secret and TTL. The kind is also written into the
// claims, so a token minted for one class never verifies as another even when two
// classes are configured with the same secret.
//
// # Architecture boundaries
//
// This package owns signing keys and claim layouts. It does NOT look at the session
// cache or decide whether a principal is authenticated; the Engine does that.
//
// # What this package must NOT do
//
//   - Import lmsAuth or session (no upward imports).
//   - Carry plaintext passwords in any claim.
package jwt
