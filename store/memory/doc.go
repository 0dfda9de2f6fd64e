// Package memory provides in-process implementations of lmsAuth.PrincipalStore
// and store.NotificationStore for tests, examples and single-node development.
package memory
