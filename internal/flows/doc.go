// Package flows contains pure-function orchestrators for the Engine operations.
//
// Each flow function (RunLogin, RunValidate, RunRefresh, RunRegister, RunActivate)
// accepts a typed dependency struct and returns a result with a failure kind. The root
// Engine maps failure kinds onto its public errors, metrics and audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the session cache, the token codec, the password
// hasher and the identity store. They do NOT own any of these resources; ownership stays
// with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import lmsAuth (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency functions and interfaces.
package flows
