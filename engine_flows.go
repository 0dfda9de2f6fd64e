package lmsAuth

import (
	"context"
	"errors"

	"github.com/MrEthical07/lmsAuth/internal"
	"github.com/MrEthical07/lmsAuth/internal/flows"
	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/session"
)

// buildFlows wires the flow dependency sets once at build time.
func (e *Engine) buildFlows() flows.Service {
	emailExists := func(ctx context.Context, email string) (bool, error) {
		_, err := e.principals.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, ErrPrincipalNotFound):
			return false, nil
		default:
			return false, err
		}
	}

	return flows.New(flows.Deps{
		Login: flows.LoginDeps{
			DummyHash:      e.dummyHash,
			UpgradeOnLogin: e.config.Password.UpgradeOnLogin,
			FindCredentials: func(ctx context.Context, email string) (flows.LoginRecord, error) {
				cred, err := e.principals.CredentialsByEmail(ctx, email)
				if err != nil {
					return flows.LoginRecord{}, err
				}
				return flows.LoginRecord{
					Snapshot:     cred.Principal.snapshot(),
					PasswordHash: cred.PasswordHash,
				}, nil
			},
			IsNotFound: func(err error) bool {
				return errors.Is(err, ErrPrincipalNotFound)
			},
			VerifyPassword:     e.hasher.Verify,
			NeedsUpgrade:       e.hasher.NeedsUpgrade,
			HashPassword:       e.hasher.Hash,
			UpdatePasswordHash: e.principals.UpdatePasswordHash,
			IssueSession:       e.issueSession,
			Warn: func(msg string, kv ...any) {
				e.logger.Sugar().Warnw(msg, kv...)
			},
		},
		Validate: flows.ValidateDeps{
			ParseAccess: e.tokens.ParseAccess,
			Sessions:    e.sessions,
		},
		Refresh: flows.RefreshDeps{
			ParseRefresh: e.tokens.ParseRefresh,
			Sessions:     e.sessions,
			IssueSession: e.issueSession,
		},
		Register: flows.RegisterDeps{
			MinPasswordLength: e.config.Password.MinLength,
			EmailExists:       emailExists,
			HashPassword:      e.hasher.Hash,
			NewCode:           internal.NewActivationCode,
			IssueTicket:       e.tokens.IssueActivation,
			SendCode: func(ctx context.Context, name, email, code string) error {
				return e.mailer.SendActivation(ctx, ActivationMail{
					Name:      name,
					Email:     email,
					Code:      code,
					ExpiresIn: e.config.JWT.ActivationTTL,
				})
			},
		},
		Activate: flows.ActivateDeps{
			ParseTicket: e.tokens.ParseActivation,
			EmailExists: emailExists,
			Create: func(ctx context.Context, pending jwt.PendingPrincipal) (*session.Snapshot, error) {
				p, err := e.principals.Create(ctx, NewPrincipal{
					Name:         pending.Name,
					Email:        pending.Email,
					PasswordHash: pending.PasswordHash,
					Role:         RoleUser,
				})
				if err != nil {
					return nil, err
				}
				return p.snapshot(), nil
			},
			IsDuplicate: func(err error) bool {
				return errors.Is(err, ErrDuplicateEmail)
			},
		},
	})
}

