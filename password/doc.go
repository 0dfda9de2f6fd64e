// Package password hashes and verifies principal passwords with bcrypt.
//
// The cost factor is fixed when the hasher is built and embedded in every hash, so a
// later cost change does not break existing hashes. [Bcrypt.NeedsUpgrade] reports
// hashes produced with a different cost so the caller can rehash on the next
// successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Length policy and the decision to
// rehash belong to the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other lmsAuth package.
//   - Log plaintext passwords.
package password
