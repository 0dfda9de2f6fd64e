// Package middleware exposes the authentication and authorization gates as
// net/http middleware built on lmsAuth.Engine.
//
// # Gates
//
//   - [Authenticate] reads the access-token cookie (or a Bearer header), resolves it
//     through Engine.Authenticate and attaches the principal to the request context.
//   - [Authorize] runs after Authenticate and rejects principals whose role is not in
//     the allow-list.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; all decisions are delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Refresh tokens on the fly; rotation is a separate client call.
package middleware
