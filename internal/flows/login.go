package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/lmsAuth/session"
)

// LoginFailure classifies why a login did not issue tokens.
type LoginFailure uint8

const (
	LoginOK LoginFailure = iota
	LoginNotReady
	LoginMissingCredentials
	LoginInvalidCredentials
	LoginBackend
	LoginIssue
)

// LoginRecord is the flow-local view of a stored principal with its hash.
type LoginRecord struct {
	Snapshot     *session.Snapshot
	PasswordHash string
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Snapshot     *session.Snapshot
	Failure      LoginFailure
	Err          error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	// DummyHash is compared against when the email is unknown so both
	// rejections cost one bcrypt comparison.
	DummyHash      string
	UpgradeOnLogin bool

	FindCredentials    func(context.Context, string) (LoginRecord, error)
	IsNotFound         func(error) bool
	VerifyPassword     func(plain, hash string) (bool, error)
	NeedsUpgrade       func(string) (bool, error)
	HashPassword       func(string) (string, error)
	UpdatePasswordHash func(ctx context.Context, id, hash string) error
	IssueSession       IssueSessionFunc

	Warn func(string, ...any)
}

// RunLogin verifies email and password and issues a session.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.IsNotFound == nil {
		deps.IsNotFound = func(error) bool { return false }
	}
	if deps.FindCredentials == nil || deps.VerifyPassword == nil || deps.IssueSession == nil {
		return LoginResult{Failure: LoginNotReady}
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{Failure: LoginMissingCredentials}
	}

	rec, err := deps.FindCredentials(ctx, email)
	if err != nil {
		if deps.IsNotFound(err) {
			burnComparison(deps, password)
			return LoginResult{Failure: LoginInvalidCredentials}
		}
		return LoginResult{Failure: LoginBackend, Err: err}
	}

	if rec.PasswordHash == "" {
		// Social-login principals have no password to match.
		burnComparison(deps, password)
		return LoginResult{Failure: LoginInvalidCredentials, Snapshot: rec.Snapshot}
	}

	ok, err := deps.VerifyPassword(password, rec.PasswordHash)
	if err != nil {
		return LoginResult{Failure: LoginBackend, Err: err, Snapshot: rec.Snapshot}
	}
	if !ok {
		return LoginResult{Failure: LoginInvalidCredentials, Snapshot: rec.Snapshot}
	}

	if deps.UpgradeOnLogin {
		upgradeHash(ctx, rec, password, deps)
	}

	access, refresh, err := deps.IssueSession(ctx, rec.Snapshot)
	if err != nil {
		return LoginResult{Failure: LoginIssue, Err: err, Snapshot: rec.Snapshot}
	}
	return LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Snapshot:     rec.Snapshot,
	}
}

func burnComparison(deps LoginDeps, password string) {
	if deps.DummyHash != "" {
		_, _ = deps.VerifyPassword(password, deps.DummyHash)
	}
}

// upgradeHash rehashes with the current cost. Failures are logged and never
// fail the login.
func upgradeHash(ctx context.Context, rec LoginRecord, password string, deps LoginDeps) {
	if deps.NeedsUpgrade == nil || deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	needs, err := deps.NeedsUpgrade(rec.PasswordHash)
	if err != nil || !needs {
		return
	}
	hash, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("password rehash failed", "principal_id", rec.Snapshot.ID, "error", err)
		return
	}
	if err := deps.UpdatePasswordHash(ctx, rec.Snapshot.ID, hash); err != nil {
		deps.Warn("password rehash persist failed", "principal_id", rec.Snapshot.ID, "error", err)
	}
}
