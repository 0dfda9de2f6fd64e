package lmsAuth

import (
	"context"
	"errors"
	"strings"
)

// SocialAuth signs in a principal vouched for by an external provider. The
// identity is trusted as given; an unknown email creates a verified principal
// without a password.
func (e *Engine) SocialAuth(ctx context.Context, id SocialIdentity) (Principal, TokenPair, error) {
	id.Email = strings.TrimSpace(id.Email)
	id.Name = strings.TrimSpace(id.Name)
	if id.Email == "" || id.Name == "" {
		return Principal{}, TokenPair{}, ErrMissingFields
	}

	p, created, err := e.findOrCreateSocial(ctx, id)
	if err != nil {
		e.emitAudit(ctx, auditEventSocialAuth, false, "", err, reason("lookup"))
		return Principal{}, TokenPair{}, err
	}

	pair, err := e.issueTokenPair(ctx, p)
	if err != nil {
		e.emitAudit(ctx, auditEventSocialAuth, false, p.ID, err, reason("issue"))
		return Principal{}, TokenPair{}, err
	}

	e.metricInc(MetricSocialAuth)
	e.emitAudit(ctx, auditEventSocialAuth, true, p.ID, nil, func() map[string]string {
		if created {
			return map[string]string{"created": "true"}
		}
		return nil
	})
	return p, pair, nil
}

func (e *Engine) findOrCreateSocial(ctx context.Context, id SocialIdentity) (Principal, bool, error) {
	p, err := e.principals.FindByEmail(ctx, id.Email)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrPrincipalNotFound) {
		return Principal{}, false, storeError(err)
	}

	np := NewPrincipal{
		Name:     id.Name,
		Email:    id.Email,
		Role:     RoleUser,
		Verified: true,
	}
	if id.AvatarURL != "" {
		np.Avatar = &Avatar{URL: id.AvatarURL}
	}
	p, err = e.principals.Create(ctx, np)
	if err == nil {
		return p, true, nil
	}
	// Another request created the same email first.
	if errors.Is(err, ErrDuplicateEmail) {
		p, err = e.principals.FindByEmail(ctx, id.Email)
		if err == nil {
			return p, false, nil
		}
	}
	return Principal{}, false, storeError(err)
}
