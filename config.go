package lmsAuth

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/lmsAuth/session"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every tunable of the Engine. Start from [DefaultConfig] and
// override what you need; [Builder.Build] validates the result.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the three token classes. ActivationSecret falls back
// to AccessSecret when empty.
type JWTConfig struct {
	AccessSecret     []byte
	RefreshSecret    []byte
	ActivationSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ActivationTTL    time.Duration
	Issuer           string
	Leeway           time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the session cache entry.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	BcryptCost     int
	MinLength      int
	UpgradeOnLogin bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls cookie attributes. ProductionMode switches the
// token cookies to Secure with SameSite=None.
type SecurityConfig struct {
	ProductionMode      bool
	AccessCookieName    string
	RefreshCookieName   string
	CookiePath          string
	CookieDomain        string
	AccessCookieMaxAge  time.Duration
	RefreshCookieMaxAge time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// DrainTimeout bounds Engine.Close; zero waits for every queued event.
	DrainTimeout time.Duration
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults without secrets.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     5 * time.Minute,
			RefreshTTL:    3 * 24 * time.Hour,
			ActivationTTL: 5 * time.Minute,
			Issuer:        "lmsauth",
		},
		Session: SessionConfig{
			RedisPrefix: session.DefaultPrefix,
			TTL:         7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			BcryptCost:     10,
			MinLength:      6,
			UpgradeOnLogin: true,
		},
		Security: SecurityConfig{
			AccessCookieName:    "access_token",
			RefreshCookieName:   "refresh_token",
			CookiePath:          "/",
			AccessCookieMaxAge:  5 * time.Minute,
			RefreshCookieMaxAge: 3 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:      true,
			BufferSize:   1024,
			DropIfFull:   true,
			DrainTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	out.JWT.ActivationSecret = cloneBytes(cfg.JWT.ActivationSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem. A config that passes
// can always sign tokens, so signing failures at request time are fatal.
func (c *Config) Validate() error {
	return c.validate(true)
}

// validate skips the secret checks when an external token codec owns signing.
func (c *Config) validate(requireSecrets bool) error {
	// JWT
	if requireSecrets {
		if len(c.JWT.AccessSecret) == 0 {
			return errors.New("JWT AccessSecret is required")
		}
		if len(c.JWT.RefreshSecret) == 0 {
			return errors.New("JWT RefreshSecret is required")
		}
		if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
			return errors.New("JWT AccessSecret and RefreshSecret must differ")
		}
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.ActivationTTL <= 0 {
		return errors.New("JWT ActivationTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be longer than AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, " \t\n") {
		return errors.New("Session RedisPrefix must not contain whitespace")
	}

	// Password
	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return errors.New("Password BcryptCost out of range")
	}
	if c.Password.MinLength < 1 || c.Password.MinLength > 72 {
		return errors.New("Password MinLength must be within [1, 72]")
	}

	// Security
	if c.Security.AccessCookieName == "" || c.Security.RefreshCookieName == "" {
		return errors.New("cookie names are required")
	}
	if c.Security.AccessCookieName == c.Security.RefreshCookieName {
		return errors.New("access and refresh cookie names must differ")
	}
	if c.Security.AccessCookieMaxAge <= 0 || c.Security.RefreshCookieMaxAge <= 0 {
		return errors.New("cookie max ages must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}
	if c.Audit.DrainTimeout < 0 {
		return errors.New("Audit DrainTimeout must be >= 0")
	}
	return nil
}
