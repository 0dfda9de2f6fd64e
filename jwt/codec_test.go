package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func testConfig() Config {
	return Config{
		AccessSecret:     []byte("access-secret-access-secret"),
		RefreshSecret:    []byte("refresh-secret-refresh-secret"),
		ActivationSecret: []byte("activation-secret-activation"),
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       72 * time.Hour,
		ActivationTTL:    5 * time.Minute,
		Issuer:           "lmsauth-test",
	}
}

func newTestCodec(t *testing.T, mutate func(*Config)) *Codec {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"missing access secret": func(c *Config) { c.AccessSecret = nil },
		"shared secrets":        func(c *Config) { c.RefreshSecret = c.AccessSecret },
		"zero refresh ttl":      func(c *Config) { c.RefreshTTL = 0 },
		"negative leeway":       func(c *Config) { c.Leeway = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			if _, err := NewCodec(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestAccessRoundTrip(t *testing.T) {
	c := newTestCodec(t, nil)

	token, err := c.IssueAccess("p-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	claims, err := c.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.ID != "p-1" || claims.Kind != KindAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 5*time.Minute {
		t.Fatalf("expected 5m lifetime, got %v", got)
	}
}

func TestRefreshDoesNotVerifyAsAccess(t *testing.T) {
	c := newTestCodec(t, nil)

	refresh, err := c.IssueRefresh("p-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if _, err := c.ParseAccess(refresh); err == nil {
		t.Fatal("expected refresh token to be rejected as access token")
	}
	if _, err := c.ParseRefresh(refresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestSharedActivationSecretStillChecksKind(t *testing.T) {
	c := newTestCodec(t, func(cfg *Config) { cfg.ActivationSecret = nil })

	access, err := c.IssueAccess("p-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	_, err = c.ParseActivation(access)
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestExpiredAccessRejected(t *testing.T) {
	past := time.Now().Add(-10 * time.Minute)
	issuer := newTestCodec(t, func(cfg *Config) { cfg.Now = func() time.Time { return past } })
	verifier := newTestCodec(t, nil)

	token, err := issuer.IssueAccess("p-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	_, err = verifier.ParseAccess(token)
	if !errors.Is(err, gjwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	c := newTestCodec(t, nil)
	other := newTestCodec(t, func(cfg *Config) {
		cfg.AccessSecret = []byte("some-other-access-secret-value")
	})

	token, err := other.IssueAccess("p-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	_, err = c.ParseAccess(token)
	if !errors.Is(err, gjwt.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	c := newTestCodec(t, nil)
	claims := SessionClaims{
		ID:   "p-1",
		Kind: KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "lmsauth-test",
		},
	}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := c.ParseAccess(token); err == nil {
		t.Fatal("expected none algorithm to be rejected")
	}
}

func TestActivationRoundTrip(t *testing.T) {
	c := newTestCodec(t, nil)
	pending := PendingPrincipal{Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$10$hash"}

	ticket, err := c.IssueActivation(pending, "4821")
	if err != nil {
		t.Fatalf("issue activation: %v", err)
	}
	claims, err := c.ParseActivation(ticket)
	if err != nil {
		t.Fatalf("parse activation: %v", err)
	}
	if claims.Pending != pending || claims.ActivationCode != "4821" {
		t.Fatalf("unexpected activation claims: %+v", claims)
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	c := newTestCodec(t, nil)
	if _, err := c.IssueAccess(""); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if KindRefresh.String() != "refresh" || Kind(9).String() != "kind(9)" {
		t.Fatalf("unexpected kind names: %s %s", KindRefresh, Kind(9))
	}
}
