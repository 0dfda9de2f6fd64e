// Package audit relays security-relevant events from the Engine to a sink without
// blocking request handling.
//
// # Components
//
//   - [Sink]: event consumer (zap logger, channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay, either dropping or blocking when full.
//   - [Event]: one audit record.
//
// # What this package must NOT do
//
//   - Decide which events to emit; the Engine does.
//   - Import lmsAuth or any sibling internal package.
package audit
