// Package respond writes the JSON envelope used by every HTTP endpoint:
// {"success": true, ...payload} on success and {"success": false, "message": ...}
// on failure.
//
// [Responder.Error] is the single place where errors become HTTP statuses. It
// remaps store and token library errors (unique violations, malformed ids,
// expired or invalid JWTs) before falling back to the lmsAuth error kind.
package respond
