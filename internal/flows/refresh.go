package flows

import (
	"context"

	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/session"
)

// RefreshFailure classifies why a rotation was rejected.
type RefreshFailure uint8

const (
	RefreshOK RefreshFailure = iota
	RefreshNotReady
	RefreshMissingToken
	RefreshInvalidToken
	RefreshSessionMissing
	RefreshBackend
	RefreshIssue
)

// RefreshResult carries the new pair and the snapshot it was issued for.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	Snapshot     *session.Snapshot
	Failure      RefreshFailure
	Err          error
}

// RefreshDeps captures rotation dependencies.
type RefreshDeps struct {
	ParseRefresh func(string) (*jwt.SessionClaims, error)
	Sessions     SessionReader
	IssueSession IssueSessionFunc
}

// RunRefresh verifies a refresh token, requires a live cache entry, and issues
// a fresh pair from the cached snapshot. Concurrent rotations are not
// serialized; the last cache write wins.
func RunRefresh(ctx context.Context, token string, deps RefreshDeps) RefreshResult {
	if deps.ParseRefresh == nil || deps.Sessions == nil || deps.IssueSession == nil {
		return RefreshResult{Failure: RefreshNotReady}
	}
	if token == "" {
		return RefreshResult{Failure: RefreshMissingToken}
	}

	claims, err := deps.ParseRefresh(token)
	if err != nil {
		return RefreshResult{Failure: RefreshInvalidToken, Err: err}
	}

	snap, err := deps.Sessions.Get(ctx, claims.ID)
	if err != nil {
		if classifySessionError(err) == ValidateSessionMissing {
			return RefreshResult{Failure: RefreshSessionMissing, Err: err}
		}
		return RefreshResult{Failure: RefreshBackend, Err: err}
	}

	access, refresh, err := deps.IssueSession(ctx, snap)
	if err != nil {
		return RefreshResult{Failure: RefreshIssue, Err: err}
	}
	return RefreshResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Snapshot:     snap,
	}
}
