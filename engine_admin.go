package lmsAuth

import (
	"context"
	"fmt"
)

// ListPrincipals returns every principal, newest first.
func (e *Engine) ListPrincipals(ctx context.Context) ([]Principal, error) {
	list, err := e.principals.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// UpdateRole changes the role of id. A live cache entry is rewritten in place,
// keeping its TTL, so the authorization gate sees the new role on the next
// request without a new login.
func (e *Engine) UpdateRole(ctx context.Context, id string, role Role) (Principal, error) {
	if !role.Valid() {
		return Principal{}, ErrInvalidRole
	}
	p, err := e.principals.UpdateRole(ctx, id, role)
	if err != nil {
		return Principal{}, storeError(err)
	}
	if _, err := e.sessions.Replace(ctx, p.snapshot()); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}

	e.metricInc(MetricRoleUpdated)
	e.emitAudit(ctx, auditEventRoleUpdate, true, id, nil, func() map[string]string {
		return map[string]string{"role": string(role)}
	})
	return p, nil
}

// DeletePrincipal removes id from the store and drops its cache entry.
func (e *Engine) DeletePrincipal(ctx context.Context, id string) error {
	if _, err := e.principals.FindByID(ctx, id); err != nil {
		return storeError(err)
	}
	if err := e.principals.Delete(ctx, id); err != nil {
		return storeError(err)
	}
	if err := e.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}

	e.metricInc(MetricPrincipalDeleted)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventPrincipalDeleted, true, id, nil, nil)
	return nil
}
