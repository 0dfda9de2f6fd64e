package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/google/uuid"
)

type principalRecord struct {
	principal lmsAuth.Principal
	hash      string
}

// Principals is a mutex-guarded principal repository.
type Principals struct {
	mu      sync.RWMutex
	records map[string]principalRecord
	byEmail map[string]string
	now     func() time.Time
}

func NewPrincipals() *Principals {
	return &Principals{
		records: map[string]principalRecord{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

func (s *Principals) Create(_ context.Context, np lmsAuth.NewPrincipal) (lmsAuth.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[np.Email]; ok {
		return lmsAuth.Principal{}, lmsAuth.ErrDuplicateEmail
	}
	role := np.Role
	if role == "" {
		role = lmsAuth.RoleUser
	}
	now := s.now().UTC()
	p := lmsAuth.Principal{
		ID:        uuid.NewString(),
		Name:      np.Name,
		Email:     np.Email,
		Role:      role,
		Verified:  np.Verified,
		Courses:   []lmsAuth.CourseRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Avatar != nil {
		a := *np.Avatar
		p.Avatar = &a
	}
	s.records[p.ID] = principalRecord{principal: p, hash: np.PasswordHash}
	s.byEmail[p.Email] = p.ID
	return copyPrincipal(p), nil
}

func (s *Principals) FindByID(_ context.Context, id string) (lmsAuth.Principal, error) {
	rec, err := s.lookupID(id)
	return copyPrincipal(rec.principal), err
}

func (s *Principals) FindByEmail(_ context.Context, email string) (lmsAuth.Principal, error) {
	rec, err := s.lookupEmail(email)
	return copyPrincipal(rec.principal), err
}

func (s *Principals) CredentialsByEmail(_ context.Context, email string) (lmsAuth.Credentials, error) {
	rec, err := s.lookupEmail(email)
	if err != nil {
		return lmsAuth.Credentials{}, err
	}
	return lmsAuth.Credentials{Principal: copyPrincipal(rec.principal), PasswordHash: rec.hash}, nil
}

func (s *Principals) CredentialsByID(_ context.Context, id string) (lmsAuth.Credentials, error) {
	rec, err := s.lookupID(id)
	if err != nil {
		return lmsAuth.Credentials{}, err
	}
	return lmsAuth.Credentials{Principal: copyPrincipal(rec.principal), PasswordHash: rec.hash}, nil
}

func (s *Principals) UpdateProfile(_ context.Context, id string, upd lmsAuth.ProfileUpdate) (lmsAuth.Principal, error) {
	return s.update(id, func(rec *principalRecord) error {
		if upd.Email != "" && upd.Email != rec.principal.Email {
			if _, taken := s.byEmail[upd.Email]; taken {
				return lmsAuth.ErrDuplicateEmail
			}
			delete(s.byEmail, rec.principal.Email)
			s.byEmail[upd.Email] = id
			rec.principal.Email = upd.Email
		}
		if upd.Name != "" {
			rec.principal.Name = upd.Name
		}
		return nil
	})
}

func (s *Principals) UpdatePasswordHash(_ context.Context, id, hash string) error {
	_, err := s.update(id, func(rec *principalRecord) error {
		rec.hash = hash
		return nil
	})
	return err
}

func (s *Principals) UpdateAvatar(_ context.Context, id string, avatar lmsAuth.Avatar) (lmsAuth.Principal, error) {
	return s.update(id, func(rec *principalRecord) error {
		rec.principal.Avatar = &avatar
		return nil
	})
}

func (s *Principals) UpdateRole(_ context.Context, id string, role lmsAuth.Role) (lmsAuth.Principal, error) {
	return s.update(id, func(rec *principalRecord) error {
		rec.principal.Role = role
		return nil
	})
}

func (s *Principals) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return lmsAuth.ErrPrincipalNotFound
	}
	delete(s.records, id)
	delete(s.byEmail, rec.principal.Email)
	return nil
}

// List returns all principals, newest first.
func (s *Principals) List(context.Context) ([]lmsAuth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]lmsAuth.Principal, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, copyPrincipal(rec.principal))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Principals) lookupID(id string) (principalRecord, error) {
	if err := checkID(id); err != nil {
		return principalRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return principalRecord{}, lmsAuth.ErrPrincipalNotFound
	}
	return rec, nil
}

func (s *Principals) lookupEmail(email string) (principalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return principalRecord{}, lmsAuth.ErrPrincipalNotFound
	}
	return s.records[id], nil
}

func (s *Principals) update(id string, fn func(*principalRecord) error) (lmsAuth.Principal, error) {
	if err := checkID(id); err != nil {
		return lmsAuth.Principal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return lmsAuth.Principal{}, lmsAuth.ErrPrincipalNotFound
	}
	if err := fn(&rec); err != nil {
		return lmsAuth.Principal{}, err
	}
	rec.principal.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return copyPrincipal(rec.principal), nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return lmsAuth.ErrMalformedID
	}
	return nil
}

func copyPrincipal(p lmsAuth.Principal) lmsAuth.Principal {
	out := p
	if p.Avatar != nil {
		a := *p.Avatar
		out.Avatar = &a
	}
	out.Courses = append([]lmsAuth.CourseRef(nil), p.Courses...)
	return out
}

var _ lmsAuth.PrincipalStore = (*Principals)(nil)
