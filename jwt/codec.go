package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind identifies a token class.
type Kind uint8

const (
	// KindAccess is a short-lived credential presented on every protected request.
	KindAccess Kind = iota + 1
	// KindRefresh is the longer-lived credential accepted only by rotation.
	KindRefresh
	// KindActivation binds a pending registration to a one-time code.
	KindActivation
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	case KindActivation:
		return "activation"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	// ErrUnknownKind is returned when a codec operation is asked for an unsupported class.
	ErrUnknownKind = errors.New("unknown token kind")
	// ErrKindMismatch is returned when a verified token belongs to another class.
	ErrKindMismatch = fmt.Errorf("%w: token kind mismatch", jwt.ErrTokenInvalidClaims)
	// ErrMissingSubject is returned when a session token carries no principal id.
	ErrMissingSubject = fmt.Errorf("%w: missing principal id", jwt.ErrTokenInvalidClaims)
)

// Config holds the secrets and lifetimes for all token classes.
type Config struct {
	AccessSecret     []byte
	RefreshSecret    []byte
	ActivationSecret []byte

	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ActivationTTL time.Duration

	Issuer string
	Leeway time.Duration

	// Now overrides the clock used for issuing and validating. Nil means time.Now.
	Now func() time.Time
}

// SessionClaims is the payload of access and refresh tokens.
type SessionClaims struct {
	ID   string `json:"id"`
	Kind Kind   `json:"knd"`
	jwt.RegisteredClaims
}

// PendingPrincipal is the registration draft carried by an activation ticket.
// The password is already hashed when it enters the ticket.
type PendingPrincipal struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// ActivationClaims is the payload of an activation ticket.
type ActivationClaims struct {
	Pending        PendingPrincipal `json:"pendingPrincipal"`
	ActivationCode string           `json:"activationCode"`
	Kind           Kind             `json:"knd"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens for every [Kind] with HS256.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if len(cfg.ActivationSecret) == 0 {
		cfg.ActivationSecret = cfg.AccessSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 || cfg.ActivationTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Codec{config: cfg}, nil
}

// IssueAccess signs an access token for principalID.
func (c *Codec) IssueAccess(principalID string) (string, error) {
	return c.issueSession(KindAccess, principalID)
}

// IssueRefresh signs a refresh token for principalID.
func (c *Codec) IssueRefresh(principalID string) (string, error) {
	return c.issueSession(KindRefresh, principalID)
}

// ParseAccess verifies an access token and returns its claims.
func (c *Codec) ParseAccess(token string) (*SessionClaims, error) {
	return c.parseSession(KindAccess, token)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (c *Codec) ParseRefresh(token string) (*SessionClaims, error) {
	return c.parseSession(KindRefresh, token)
}

// IssueActivation signs an activation ticket binding pending to code.
func (c *Codec) IssueActivation(pending PendingPrincipal, code string) (string, error) {
	claims := ActivationClaims{
		Pending:          pending,
		ActivationCode:   code,
		Kind:             KindActivation,
		RegisteredClaims: c.registered(KindActivation),
	}
	return c.sign(KindActivation, claims)
}

// ParseActivation verifies an activation ticket and returns its claims.
func (c *Codec) ParseActivation(token string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := c.parse(KindActivation, token, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindActivation {
		return nil, ErrKindMismatch
	}
	return claims, nil
}

// TTL reports the configured lifetime of k.
func (c *Codec) TTL(k Kind) time.Duration {
	switch k {
	case KindAccess:
		return c.config.AccessTTL
	case KindRefresh:
		return c.config.RefreshTTL
	case KindActivation:
		return c.config.ActivationTTL
	default:
		return 0
	}
}

func (c *Codec) issueSession(k Kind, principalID string) (string, error) {
	if principalID == "" {
		return "", ErrMissingSubject
	}
	claims := SessionClaims{
		ID:               principalID,
		Kind:             k,
		RegisteredClaims: c.registered(k),
	}
	return c.sign(k, claims)
}

func (c *Codec) parseSession(k Kind, token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := c.parse(k, token, claims); err != nil {
		return nil, err
	}
	if claims.Kind != k {
		return nil, ErrKindMismatch
	}
	if claims.ID == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

func (c *Codec) registered(k Kind) jwt.RegisteredClaims {
	now := c.config.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(k))),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    c.config.Issuer,
	}
}

func (c *Codec) sign(k Kind, claims jwt.Claims) (string, error) {
	secret, err := c.secretFor(k)
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) parse(k Kind, token string, claims jwt.Claims) error {
	secret, err := c.secretFor(k)
	if err != nil {
		return err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.config.Now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

func (c *Codec) secretFor(k Kind) ([]byte, error) {
	switch k {
	case KindAccess:
		return c.config.AccessSecret, nil
	case KindRefresh:
		return c.config.RefreshSecret, nil
	case KindActivation:
		return c.config.ActivationSecret, nil
	default:
		return nil, ErrUnknownKind
	}
}
