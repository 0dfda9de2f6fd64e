// Package internal contains helpers private to lmsAuth, such as secure random
// generation for activation codes and object keys.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function orchestrators for the Engine operations
//
// # What this package must NOT do
//
//   - Export types that appear in the public lmsAuth API.
//   - Be imported by any package outside the lmsAuth module.
package internal
