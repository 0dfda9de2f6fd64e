package flows

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/session"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// RegisterFailure classifies why a registration did not produce a ticket.
type RegisterFailure uint8

const (
	RegisterOK RegisterFailure = iota
	RegisterNotReady
	RegisterMissingFields
	RegisterWeakPassword
	RegisterPasswordTooLong
	RegisterDuplicate
	RegisterBackend
	RegisterIssue
	RegisterMail
)

// RegisterRequest is the flow-local registration draft.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult carries the signed ticket and the code handed to the mailer.
type RegisterResult struct {
	Token   string
	Code    string
	Failure RegisterFailure
	Err     error
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	MinPasswordLength int

	EmailExists  func(context.Context, string) (bool, error)
	HashPassword func(string) (string, error)
	NewCode      func() (string, error)
	IssueTicket  func(jwt.PendingPrincipal, string) (string, error)
	SendCode     func(ctx context.Context, name, email, code string) error
}

// RunRegister validates the draft and issues an activation ticket. The ticket
// carries the password hash, never the plaintext.
func RunRegister(ctx context.Context, req RegisterRequest, deps RegisterDeps) RegisterResult {
	if deps.EmailExists == nil || deps.HashPassword == nil || deps.NewCode == nil ||
		deps.IssueTicket == nil || deps.SendCode == nil {
		return RegisterResult{Failure: RegisterNotReady}
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return RegisterResult{Failure: RegisterMissingFields}
	}
	if deps.MinPasswordLength > 0 && len(req.Password) < deps.MinPasswordLength {
		return RegisterResult{Failure: RegisterWeakPassword}
	}
	if len(req.Password) > maxPasswordBytes {
		return RegisterResult{Failure: RegisterPasswordTooLong}
	}

	exists, err := deps.EmailExists(ctx, req.Email)
	if err != nil {
		return RegisterResult{Failure: RegisterBackend, Err: err}
	}
	if exists {
		return RegisterResult{Failure: RegisterDuplicate}
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return RegisterResult{Failure: RegisterIssue, Err: err}
	}
	code, err := deps.NewCode()
	if err != nil {
		return RegisterResult{Failure: RegisterIssue, Err: err}
	}
	token, err := deps.IssueTicket(jwt.PendingPrincipal{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}, code)
	if err != nil {
		return RegisterResult{Failure: RegisterIssue, Err: err}
	}

	if err := deps.SendCode(ctx, req.Name, req.Email, code); err != nil {
		return RegisterResult{Failure: RegisterMail, Err: err}
	}
	return RegisterResult{Token: token, Code: code}
}

// ActivateFailure classifies why an activation did not create a principal.
type ActivateFailure uint8

const (
	ActivateOK ActivateFailure = iota
	ActivateNotReady
	ActivateMissingFields
	ActivateInvalidTicket
	ActivateCodeMismatch
	ActivateDuplicate
	ActivateBackend
)

// ActivateResult carries the principal that was persisted.
type ActivateResult struct {
	Pending  jwt.PendingPrincipal
	Snapshot *session.Snapshot
	Failure  ActivateFailure
	Err      error
}

// ActivateDeps captures activation dependencies. Create returns a snapshot of
// the new principal.
type ActivateDeps struct {
	ParseTicket func(string) (*jwt.ActivationClaims, error)
	EmailExists func(context.Context, string) (bool, error)
	Create      func(context.Context, jwt.PendingPrincipal) (*session.Snapshot, error)
	IsDuplicate func(error) bool
}

// RunActivate checks the ticket and code and persists the pending principal.
// There is no attempt counter; a wrong code may be retried until the ticket
// expires.
func RunActivate(ctx context.Context, ticket, code string, deps ActivateDeps) ActivateResult {
	if deps.IsDuplicate == nil {
		deps.IsDuplicate = func(error) bool { return false }
	}
	if deps.ParseTicket == nil || deps.EmailExists == nil || deps.Create == nil {
		return ActivateResult{Failure: ActivateNotReady}
	}
	if ticket == "" || code == "" {
		return ActivateResult{Failure: ActivateMissingFields}
	}

	claims, err := deps.ParseTicket(ticket)
	if err != nil {
		return ActivateResult{Failure: ActivateInvalidTicket, Err: err}
	}
	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(code)) != 1 {
		return ActivateResult{Failure: ActivateCodeMismatch, Pending: claims.Pending}
	}

	exists, err := deps.EmailExists(ctx, claims.Pending.Email)
	if err != nil {
		return ActivateResult{Failure: ActivateBackend, Err: err, Pending: claims.Pending}
	}
	if exists {
		return ActivateResult{Failure: ActivateDuplicate, Pending: claims.Pending}
	}

	snap, err := deps.Create(ctx, claims.Pending)
	if err != nil {
		if deps.IsDuplicate(err) {
			return ActivateResult{Failure: ActivateDuplicate, Err: err, Pending: claims.Pending}
		}
		return ActivateResult{Failure: ActivateBackend, Err: err, Pending: claims.Pending}
	}
	return ActivateResult{Pending: claims.Pending, Snapshot: snap}
}
