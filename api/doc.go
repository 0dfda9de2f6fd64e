// Package api is the HTTP surface of the authentication service. It mounts
// the registration, login, session and account routes on a chi router under a
// configurable prefix and renders every response through respond.
package api
