package lmsAuth

import (
	"context"
	"fmt"

	"github.com/MrEthical07/lmsAuth/internal/flows"
)

// Register validates a registration draft, signs an activation ticket and
// hands the 4-digit code to the mailer. The ticket carries the password hash.
// Only ticket.Token may be returned to the HTTP caller.
func (e *Engine) Register(ctx context.Context, req RegistrationRequest) (ActivationTicket, error) {
	e.metricInc(MetricRegistrationRequest)
	res := e.flows.Register(ctx, flows.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})

	var err error
	switch res.Failure {
	case flows.RegisterOK:
		e.emitAudit(ctx, auditEventRegistration, true, "", nil, func() map[string]string {
			return map[string]string{"email": req.Email}
		})
		return ActivationTicket{Token: res.Token, Code: res.Code}, nil
	case flows.RegisterNotReady:
		return ActivationTicket{}, ErrEngineNotReady
	case flows.RegisterMissingFields:
		err = ErrMissingFields
	case flows.RegisterWeakPassword:
		err = ErrWeakPassword
	case flows.RegisterPasswordTooLong:
		err = ErrPasswordTooLong
	case flows.RegisterDuplicate:
		err = ErrDuplicateEmail
	case flows.RegisterBackend:
		err = storeError(res.Err)
	case flows.RegisterMail:
		e.logger.Sugar().Errorw("activation mail failed", "email", req.Email, "error", res.Err)
		err = fmt.Errorf("%w: %v", ErrActivationMail, res.Err)
	default:
		err = fmt.Errorf("%w: %v", ErrTokenSigning, res.Err)
	}

	e.metricInc(MetricRegistrationFailure)
	e.emitAudit(ctx, auditEventRegistration, false, "", err, func() map[string]string {
		return map[string]string{"email": req.Email}
	})
	return ActivationTicket{}, err
}

// Activate confirms an activation ticket with its code and creates the
// principal. No session is established; the caller must log in.
func (e *Engine) Activate(ctx context.Context, ticket, code string) (Principal, error) {
	res := e.flows.Activate(ctx, ticket, code)

	var err error
	switch res.Failure {
	case flows.ActivateOK:
		p := principalFromSnapshot(res.Snapshot)
		e.metricInc(MetricActivationSuccess)
		e.emitAudit(ctx, auditEventActivationSuccess, true, p.ID, nil, nil)
		return p, nil
	case flows.ActivateNotReady:
		return Principal{}, ErrEngineNotReady
	case flows.ActivateMissingFields:
		err = ErrMissingFields
	case flows.ActivateInvalidTicket:
		err = fmt.Errorf("%w: %w", ErrInvalidTicket, res.Err)
	case flows.ActivateCodeMismatch:
		err = ErrCodeMismatch
	case flows.ActivateDuplicate:
		err = ErrDuplicateEmail
	default:
		err = storeError(res.Err)
	}

	e.metricInc(MetricActivationFailure)
	e.emitAudit(ctx, auditEventActivationFailure, false, "", err, func() map[string]string {
		return map[string]string{"email": res.Pending.Email}
	})
	return Principal{}, err
}
