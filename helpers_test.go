package lmsAuth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret-for-tests")
	cfg.JWT.RefreshSecret = []byte("refresh-secret-for-tests")
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.Audit.Enabled = false
	return cfg
}

// testClock is a manually advanced clock for token expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCodec(t *testing.T, cfg Config, clock *testClock) *jwt.Codec {
	t.Helper()

	codec, err := jwt.NewCodec(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		ActivationTTL: cfg.JWT.ActivationTTL,
		Issuer:        cfg.JWT.Issuer,
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return codec
}

type testEnv struct {
	engine *Engine
	store  *mockPrincipalStore
	mailer *captureMailer
	media  *fakeMedia
	redis  *miniredis.Miniredis
	codec  *jwt.Codec
	clock  *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	clock := newTestClock()
	codec := newTestCodec(t, cfg, clock)
	env := &testEnv{
		store:  newMockPrincipalStore(),
		mailer: &captureMailer{},
		media:  &fakeMedia{objects: map[string][]byte{}},
		redis:  mr,
		codec:  codec,
		clock:  clock,
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithTokenCodec(codec).
		WithPrincipalStore(env.store).
		WithMailer(env.mailer).
		WithMediaProvider(env.media).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	env.engine = engine
	return env
}

// registerAndActivate runs the full activation round trip.
func (env *testEnv) registerAndActivate(t *testing.T, name, email, password string) Principal {
	t.Helper()

	ctx := context.Background()
	ticket, err := env.engine.Register(ctx, RegistrationRequest{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	code := env.mailer.lastCode(email)
	if code == "" {
		t.Fatalf("expected activation code to be mailed to %s", email)
	}
	p, err := env.engine.Activate(ctx, ticket.Token, code)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	return p
}

type mockPrincipalStore struct {
	mu      sync.Mutex
	records map[string]Credentials
	byEmail map[string]string

	createErr error
}

func newMockPrincipalStore() *mockPrincipalStore {
	return &mockPrincipalStore{
		records: map[string]Credentials{},
		byEmail: map[string]string{},
	}
}

func (m *mockPrincipalStore) Create(_ context.Context, np NewPrincipal) (Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return Principal{}, m.createErr
	}
	if _, ok := m.byEmail[np.Email]; ok {
		return Principal{}, ErrDuplicateEmail
	}
	role := np.Role
	if role == "" {
		role = RoleUser
	}
	now := time.Now().UTC()
	p := Principal{
		ID:        uuid.NewString(),
		Name:      np.Name,
		Email:     np.Email,
		Role:      role,
		Verified:  np.Verified,
		Courses:   []CourseRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Avatar != nil {
		a := *np.Avatar
		p.Avatar = &a
	}
	m.records[p.ID] = Credentials{Principal: p, PasswordHash: np.PasswordHash}
	m.byEmail[p.Email] = p.ID
	return p.clone(), nil
}

func (m *mockPrincipalStore) FindByID(ctx context.Context, id string) (Principal, error) {
	c, err := m.CredentialsByID(ctx, id)
	return c.Principal, err
}

func (m *mockPrincipalStore) FindByEmail(ctx context.Context, email string) (Principal, error) {
	c, err := m.CredentialsByEmail(ctx, email)
	return c.Principal, err
}

func (m *mockPrincipalStore) CredentialsByEmail(_ context.Context, email string) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return Credentials{}, ErrPrincipalNotFound
	}
	c := m.records[id]
	c.Principal = c.Principal.clone()
	return c, nil
}

func (m *mockPrincipalStore) CredentialsByID(_ context.Context, id string) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return Credentials{}, ErrPrincipalNotFound
	}
	c.Principal = c.Principal.clone()
	return c, nil
}

func (m *mockPrincipalStore) update(id string, fn func(*Credentials) error) (Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return Principal{}, ErrPrincipalNotFound
	}
	if err := fn(&c); err != nil {
		return Principal{}, err
	}
	c.Principal.UpdatedAt = time.Now().UTC()
	m.records[id] = c
	return c.Principal.clone(), nil
}

func (m *mockPrincipalStore) UpdateProfile(_ context.Context, id string, upd ProfileUpdate) (Principal, error) {
	return m.update(id, func(c *Credentials) error {
		if upd.Email != "" && upd.Email != c.Principal.Email {
			if _, taken := m.byEmail[upd.Email]; taken {
				return ErrDuplicateEmail
			}
			delete(m.byEmail, c.Principal.Email)
			m.byEmail[upd.Email] = id
			c.Principal.Email = upd.Email
		}
		if upd.Name != "" {
			c.Principal.Name = upd.Name
		}
		return nil
	})
}

func (m *mockPrincipalStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	_, err := m.update(id, func(c *Credentials) error {
		c.PasswordHash = hash
		return nil
	})
	return err
}

func (m *mockPrincipalStore) UpdateAvatar(_ context.Context, id string, avatar Avatar) (Principal, error) {
	return m.update(id, func(c *Credentials) error {
		c.Principal.Avatar = &avatar
		return nil
	})
}

func (m *mockPrincipalStore) UpdateRole(_ context.Context, id string, role Role) (Principal, error) {
	return m.update(id, func(c *Credentials) error {
		c.Principal.Role = role
		return nil
	})
}

func (m *mockPrincipalStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	delete(m.records, id)
	delete(m.byEmail, c.Principal.Email)
	return nil
}

func (m *mockPrincipalStore) List(context.Context) ([]Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Principal, 0, len(m.records))
	for _, c := range m.records {
		out = append(out, c.Principal.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockPrincipalStore) passwordHash(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id].PasswordHash
}

type captureMailer struct {
	mu   sync.Mutex
	sent []ActivationMail
	err  error
}

func (m *captureMailer) SendActivation(_ context.Context, mail ActivationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *captureMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Email == email {
			return m.sent[i].Code
		}
	}
	return ""
}

type fakeMedia struct {
	mu        sync.Mutex
	objects   map[string][]byte
	destroyed []string
	seq       int
}

func (f *fakeMedia) Upload(_ context.Context, principalID string, image []byte, _ string) (Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "avatars/" + principalID + "-" + string(rune('0'+f.seq))
	f.objects[id] = image
	return Avatar{PublicID: id, URL: "https://media.test/" + id}, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[publicID]; !ok {
		return errors.New("object not found")
	}
	delete(f.objects, publicID)
	f.destroyed = append(f.destroyed, publicID)
	return nil
}
