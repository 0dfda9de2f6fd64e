package lmsAuth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/lmsAuth/session"
	"go.uber.org/zap"
)

// Principal returns the cached principal for id, falling back to the store
// when the cache has no entry. The fallback does not repopulate the cache.
func (e *Engine) Principal(ctx context.Context, id string) (Principal, error) {
	snap, err := e.sessions.Get(ctx, id)
	if err == nil {
		return principalFromSnapshot(snap), nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return Principal{}, fmt.Errorf("%w: %v", ErrSessionBackend, err)
	}
	p, err := e.principals.FindByID(ctx, id)
	if err != nil {
		return Principal{}, storeError(err)
	}
	return p, nil
}

// UpdateProfile changes name and/or email and rewrites the cache entry.
func (e *Engine) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (Principal, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.TrimSpace(upd.Email)
	if upd.Name == "" && upd.Email == "" {
		return Principal{}, ErrMissingFields
	}

	if upd.Email != "" {
		existing, err := e.principals.FindByEmail(ctx, upd.Email)
		switch {
		case err == nil && existing.ID != id:
			return Principal{}, ErrDuplicateEmail
		case err != nil && !errors.Is(err, ErrPrincipalNotFound):
			return Principal{}, storeError(err)
		}
	}

	p, err := e.principals.UpdateProfile(ctx, id, upd)
	if err != nil {
		return Principal{}, storeError(err)
	}
	if err := e.cachePrincipal(ctx, p); err != nil {
		return Principal{}, err
	}
	e.emitAudit(ctx, auditEventProfileUpdate, true, id, nil, nil)
	return p, nil
}

// ChangePassword replaces the password of id after checking the current one.
// Principals created through social login have no password to change.
func (e *Engine) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingCredentials
	}

	cred, err := e.principals.CredentialsByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if cred.PasswordHash == "" {
		return ErrPasswordNotSet
	}

	ok, err := e.hasher.Verify(oldPassword, cred.PasswordHash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrincipalBackend, err)
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeFail, false, id, ErrInvalidPassword, nil)
		return ErrInvalidPassword
	}

	if len(newPassword) < e.config.Password.MinLength {
		return ErrWeakPassword
	}
	if len(newPassword) > 72 {
		return ErrPasswordTooLong
	}
	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrincipalBackend, err)
	}
	if err := e.principals.UpdatePasswordHash(ctx, id, hash); err != nil {
		return storeError(err)
	}
	if err := e.cachePrincipal(ctx, cred.Principal); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, id, nil, nil)
	return nil
}

// UpdateAvatar replaces the avatar of id. The previous object is destroyed
// before the new one is uploaded.
func (e *Engine) UpdateAvatar(ctx context.Context, id string, image []byte, contentType string) (Principal, error) {
	if e.media == nil {
		return Principal{}, ErrEngineNotReady
	}
	if len(image) == 0 || !strings.HasPrefix(contentType, "image/") {
		return Principal{}, ErrInvalidAvatar
	}

	current, err := e.principals.FindByID(ctx, id)
	if err != nil {
		return Principal{}, storeError(err)
	}
	if current.Avatar != nil && current.Avatar.PublicID != "" {
		if err := e.media.Destroy(ctx, current.Avatar.PublicID); err != nil {
			e.logger.Warn("previous avatar destroy failed",
				zap.String("principal_id", id),
				zap.String("public_id", current.Avatar.PublicID),
				zap.Error(err),
			)
			return Principal{}, fmt.Errorf("%w: %v", ErrMediaBackend, err)
		}
	}

	avatar, err := e.media.Upload(ctx, id, image, contentType)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrMediaBackend, err)
	}
	p, err := e.principals.UpdateAvatar(ctx, id, avatar)
	if err != nil {
		return Principal{}, storeError(err)
	}
	if err := e.cachePrincipal(ctx, p); err != nil {
		return Principal{}, err
	}
	e.emitAudit(ctx, auditEventAvatarUpdate, true, id, nil, func() map[string]string {
		return map[string]string{"public_id": avatar.PublicID}
	})
	return p, nil
}
