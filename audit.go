package lmsAuth

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/lmsAuth/internal/audit"
	"go.uber.org/zap"
)

// AuditEvent is one audit record emitted by the Engine.
type AuditEvent = audit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = audit.Sink

// NewZapAuditSink logs audit events through logger.
func NewZapAuditSink(logger *zap.Logger) AuditSink {
	return audit.NewZapSink(logger)
}

// NewJSONAuditSink writes one JSON object per audit event to w.
func NewJSONAuditSink(w io.Writer) AuditSink {
	return audit.NewJSONWriterSink(w)
}

// NewChannelAuditSink buffers audit events into a channel, mostly for tests.
func NewChannelAuditSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

const (
	auditEventRegistration       = "registration_request"
	auditEventActivationSuccess  = "activation_success"
	auditEventActivationFailure  = "activation_failure"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshInvalid     = "refresh_invalid"
	auditEventAuthorizationDeny  = "authorization_denied"
	auditEventLogout             = "logout"
	auditEventSocialAuth         = "social_auth"
	auditEventPasswordChange     = "password_change"
	auditEventPasswordChangeFail = "password_change_failure"
	auditEventProfileUpdate      = "profile_update"
	auditEventAvatarUpdate       = "avatar_update"
	auditEventRoleUpdate         = "role_update"
	auditEventPrincipalDeleted   = "principal_deleted"
)

// emitAudit builds the metadata lazily so disabled auditing costs nothing.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, principalID string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		PrincipalID: principalID,
		IP:          clientIPFromContext(ctx),
		Success:     success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	e.audit.Emit(ctx, event)
}

func reason(r string) func() map[string]string {
	return func() map[string]string {
		return map[string]string{"reason": r}
	}
}
