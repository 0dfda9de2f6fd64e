package lmsAuth

import (
	"context"
	"time"

	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/session"
)

// Role is a principal's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Avatar references an uploaded profile image.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// CourseRef references a course owned by a principal.
type CourseRef struct {
	CourseID string `json:"courseId"`
}

// Principal is an identity as returned by the store and the session cache.
// It never carries the password hash.
type Principal struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      Role        `json:"role"`
	Verified  bool        `json:"isVerified"`
	Avatar    *Avatar     `json:"avatar,omitempty"`
	Courses   []CourseRef `json:"courses"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Credentials is a principal together with its normally hidden password hash.
// PasswordHash is empty for principals created through social login.
type Credentials struct {
	Principal    Principal
	PasswordHash string
}

// NewPrincipal is the input for creating a principal record.
type NewPrincipal struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	Avatar       *Avatar
}

// ProfileUpdate carries the optional fields of a profile change. Empty
// strings leave the field untouched.
type ProfileUpdate struct {
	Name  string
	Email string
}

// PrincipalStore is the identity store. Implementations return
// ErrPrincipalNotFound for unknown ids or emails and ErrDuplicateEmail when a
// write would violate email uniqueness.
type PrincipalStore interface {
	Create(ctx context.Context, p NewPrincipal) (Principal, error)
	FindByID(ctx context.Context, id string) (Principal, error)
	FindByEmail(ctx context.Context, email string) (Principal, error)
	CredentialsByEmail(ctx context.Context, email string) (Credentials, error)
	CredentialsByID(ctx context.Context, id string) (Credentials, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (Principal, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAvatar(ctx context.Context, id string, avatar Avatar) (Principal, error)
	UpdateRole(ctx context.Context, id string, role Role) (Principal, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Principal, error)
}

// SessionStore is the session cache capability. Get must return
// session.ErrNotFound for a missing entry.
type SessionStore interface {
	Save(ctx context.Context, snap *session.Snapshot, ttl time.Duration) error
	Get(ctx context.Context, principalID string) (*session.Snapshot, error)
	Delete(ctx context.Context, principalID string) error
	Replace(ctx context.Context, snap *session.Snapshot) (bool, error)
}

// TokenCodec is the token signing capability.
type TokenCodec interface {
	IssueAccess(principalID string) (string, error)
	IssueRefresh(principalID string) (string, error)
	ParseAccess(token string) (*jwt.SessionClaims, error)
	ParseRefresh(token string) (*jwt.SessionClaims, error)
	IssueActivation(pending jwt.PendingPrincipal, code string) (string, error)
	ParseActivation(token string) (*jwt.ActivationClaims, error)
}

// ActivationMail is handed to the mail collaborator after registration.
type ActivationMail struct {
	Name      string
	Email     string
	Code      string
	ExpiresIn time.Duration
}

// Mailer delivers activation codes out of band.
type Mailer interface {
	SendActivation(ctx context.Context, mail ActivationMail) error
}

// MediaProvider stores avatar images.
type MediaProvider interface {
	Upload(ctx context.Context, principalID string, image []byte, contentType string) (Avatar, error)
	Destroy(ctx context.Context, publicID string) error
}

// RegistrationRequest is the registration draft.
type RegistrationRequest struct {
	Name     string
	Email    string
	Password string
}

// ActivationTicket is the result of registration. Code goes to the mailer;
// only Token is returned to the HTTP caller.
type ActivationTicket struct {
	Token string
	Code  string
}

// TokenPair is an access token and its refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SocialIdentity is a pre-verified identity claim from an external provider.
type SocialIdentity struct {
	Email     string
	Name      string
	AvatarURL string
}

func (p Principal) snapshot() *session.Snapshot {
	s := &session.Snapshot{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      string(p.Role),
		Verified:  p.Verified,
		Courses:   make([]session.Course, 0, len(p.Courses)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Avatar != nil {
		s.Avatar = &session.Avatar{PublicID: p.Avatar.PublicID, URL: p.Avatar.URL}
	}
	for _, c := range p.Courses {
		s.Courses = append(s.Courses, session.Course{CourseID: c.CourseID})
	}
	return s
}

func principalFromSnapshot(s *session.Snapshot) Principal {
	p := Principal{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Role:      Role(s.Role),
		Verified:  s.Verified,
		Courses:   make([]CourseRef, 0, len(s.Courses)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Avatar != nil {
		p.Avatar = &Avatar{PublicID: s.Avatar.PublicID, URL: s.Avatar.URL}
	}
	for _, c := range s.Courses {
		p.Courses = append(p.Courses, CourseRef{CourseID: c.CourseID})
	}
	return p
}

// clone returns a deep copy so that values placed in a context stay immutable.
func (p Principal) clone() Principal {
	out := p
	if p.Avatar != nil {
		a := *p.Avatar
		out.Avatar = &a
	}
	out.Courses = append([]CourseRef(nil), p.Courses...)
	return out
}
