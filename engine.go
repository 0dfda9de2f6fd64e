package lmsAuth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/lmsAuth/internal/audit"
	"github.com/MrEthical07/lmsAuth/internal/flows"
	"github.com/MrEthical07/lmsAuth/password"
	"github.com/MrEthical07/lmsAuth/session"
	"go.uber.org/zap"
)

// Engine is the authentication core. Build it with [New]; all methods are safe
// for concurrent use.
type Engine struct {
	config     Config
	sessions   SessionStore
	tokens     TokenCodec
	principals PrincipalStore
	mailer     Mailer
	media      MediaProvider
	hasher     *password.Bcrypt
	dummyHash  string
	logger     *zap.Logger
	metrics    *Metrics
	audit      *audit.Dispatcher
	flows      flows.Service
}

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events never reached the sink.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedByType breaks AuditDropped down by audit event type.
func (e *Engine) AuditDroppedByType() map[string]uint64 {
	if e == nil || e.audit == nil {
		return map[string]uint64{}
	}
	return e.audit.DroppedByType()
}

// MetricsSnapshot returns a copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies email and password, writes the session cache entry and
// returns a fresh token pair. Unknown email and wrong password both return
// [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (Principal, TokenPair, error) {
	res := e.flows.Login(ctx, email, password)

	var err error
	switch res.Failure {
	case flows.LoginOK:
		p := principalFromSnapshot(res.Snapshot)
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, p.ID, nil, nil)
		return p, TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	case flows.LoginNotReady:
		return Principal{}, TokenPair{}, ErrEngineNotReady
	case flows.LoginMissingCredentials:
		err = ErrMissingCredentials
	case flows.LoginInvalidCredentials:
		err = ErrInvalidCredentials
	case flows.LoginBackend:
		err = fmt.Errorf("%w: %v", ErrPrincipalBackend, res.Err)
	default:
		err = res.Err
	}

	principalID := ""
	if res.Snapshot != nil {
		principalID = res.Snapshot.ID
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, principalID, err, nil)
	return Principal{}, TokenPair{}, err
}

// Authenticate resolves an access token to the cached principal. It never
// refreshes and never writes to the cache.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (Principal, error) {
	start := time.Now()
	res := e.flows.Validate(ctx, accessToken)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}

	var err error
	switch res.Failure {
	case flows.ValidateOK:
		e.metricInc(MetricAuthenticateSuccess)
		return principalFromSnapshot(res.Snapshot), nil
	case flows.ValidateNotReady:
		return Principal{}, ErrEngineNotReady
	case flows.ValidateMissingToken:
		err = ErrMissingToken
	case flows.ValidateInvalidToken:
		err = fmt.Errorf("%w: %w", ErrInvalidToken, res.Err)
	case flows.ValidateSessionMissing:
		err = ErrSessionExpired
	default:
		err = fmt.Errorf("%w: %v", ErrSessionBackend, res.Err)
	}
	e.metricInc(MetricAuthenticateFailure)
	return Principal{}, err
}

// Authorize allows p when its role is in roles. It is stateless.
func (e *Engine) Authorize(ctx context.Context, p Principal, roles ...Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	e.metricInc(MetricAuthorizationDenied)
	e.emitAudit(ctx, auditEventAuthorizationDeny, false, p.ID, ErrForbidden, func() map[string]string {
		return map[string]string{"role": string(p.Role)}
	})
	return ErrForbidden
}

// Refresh rotates a refresh token into a new pair and rewrites the cache entry
// with a fresh TTL. A refresh token whose entry was evicted fails with
// [ErrSessionExpired].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (Principal, TokenPair, error) {
	res := e.flows.Refresh(ctx, refreshToken)

	var err error
	switch res.Failure {
	case flows.RefreshOK:
		p := principalFromSnapshot(res.Snapshot)
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, p.ID, nil, nil)
		return p, TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
	case flows.RefreshNotReady:
		return Principal{}, TokenPair{}, ErrEngineNotReady
	case flows.RefreshMissingToken:
		err = ErrMissingToken
	case flows.RefreshInvalidToken:
		err = fmt.Errorf("%w: %w", ErrInvalidRefreshToken, res.Err)
	case flows.RefreshSessionMissing:
		err = ErrSessionExpired
	case flows.RefreshBackend:
		err = fmt.Errorf("%w: %v", ErrSessionBackend, res.Err)
	default:
		err = res.Err
	}
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, auditEventRefreshInvalid, false, "", err, nil)
	return Principal{}, TokenPair{}, err
}

// Logout deletes the cache entry of principalID. The caller clears cookies
// regardless of the result; a failed delete is logged.
func (e *Engine) Logout(ctx context.Context, principalID string) error {
	if e.sessions == nil {
		return ErrEngineNotReady
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, principalID, nil, nil)
	if principalID == "" {
		return nil
	}
	if err := e.sessions.Delete(ctx, principalID); err != nil {
		e.logger.Warn("session delete on logout failed",
			zap.String("principal_id", principalID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	e.metricInc(MetricSessionInvalidated)
	return nil
}

// LogoutToken ends the session named by an access token. Only the signature
// is checked, so a principal whose entry already expired, or whose cache is
// unreachable, can still log out. The returned id is empty only when the
// token itself was rejected; a failed delete is reported alongside the id.
func (e *Engine) LogoutToken(ctx context.Context, accessToken string) (string, error) {
	if e.tokens == nil {
		return "", ErrEngineNotReady
	}
	if accessToken == "" {
		return "", ErrMissingToken
	}
	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.ID, e.Logout(ctx, claims.ID)
}

// issueTokenPair signs a pair for p and writes its snapshot into the cache.
func (e *Engine) issueTokenPair(ctx context.Context, p Principal) (TokenPair, error) {
	access, refresh, err := e.issueSession(ctx, p.snapshot())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (e *Engine) issueSession(ctx context.Context, snap *session.Snapshot) (string, string, error) {
	access, err := e.tokens.IssueAccess(snap.ID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrTokenSigning, err)
	}
	refresh, err := e.tokens.IssueRefresh(snap.ID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrTokenSigning, err)
	}
	if err := e.sessions.Save(ctx, snap, e.config.Session.TTL); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	e.metricInc(MetricSessionCreated)
	return access, refresh, nil
}

// cachePrincipal rewrites the cache entry after a profile change. The entry is
// written even if it had expired, matching a fresh login.
func (e *Engine) cachePrincipal(ctx context.Context, p Principal) error {
	if err := e.sessions.Save(ctx, p.snapshot(), e.config.Session.TTL); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	return nil
}

// storeError keeps typed store errors and wraps anything else as a backend failure.
func storeError(err error) error {
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPrincipalBackend, err)
}
