package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/session"
)

// ValidateFailure classifies why an access token did not authenticate.
type ValidateFailure uint8

const (
	ValidateOK ValidateFailure = iota
	ValidateNotReady
	ValidateMissingToken
	ValidateInvalidToken
	ValidateSessionMissing
	ValidateBackend
)

// ValidateResult carries the cached snapshot on success.
type ValidateResult struct {
	Snapshot *session.Snapshot
	Failure  ValidateFailure
	Err      error
}

// ValidateDeps captures the token parser and the read side of the cache.
type ValidateDeps struct {
	ParseAccess func(string) (*jwt.SessionClaims, error)
	Sessions    SessionReader
}

// RunValidate verifies token and loads the principal snapshot. It never writes
// to the cache.
func RunValidate(ctx context.Context, token string, deps ValidateDeps) ValidateResult {
	if deps.ParseAccess == nil || deps.Sessions == nil {
		return ValidateResult{Failure: ValidateNotReady}
	}
	if token == "" {
		return ValidateResult{Failure: ValidateMissingToken}
	}

	claims, err := deps.ParseAccess(token)
	if err != nil {
		return ValidateResult{Failure: ValidateInvalidToken, Err: err}
	}

	snap, err := deps.Sessions.Get(ctx, claims.ID)
	if err != nil {
		return ValidateResult{Failure: classifySessionError(err), Err: err}
	}
	return ValidateResult{Snapshot: snap}
}

func classifySessionError(err error) ValidateFailure {
	if errors.Is(err, session.ErrNotFound) {
		return ValidateSessionMissing
	}
	return ValidateBackend
}
