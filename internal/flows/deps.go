package flows

import (
	"context"

	"github.com/MrEthical07/lmsAuth/session"
)

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow.
type Deps struct {
	Login    LoginDeps
	Validate ValidateDeps
	Refresh  RefreshDeps
	Register RegisterDeps
	Activate ActivateDeps
}

// SessionReader is the read side of the session cache.
type SessionReader interface {
	Get(ctx context.Context, principalID string) (*session.Snapshot, error)
}

// IssueSessionFunc signs a token pair for snap and writes snap into the
// session cache with the session TTL.
type IssueSessionFunc func(ctx context.Context, snap *session.Snapshot) (access, refresh string, err error)

