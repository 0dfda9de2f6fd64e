package lmsAuth

import (
	"errors"
	"net/http"
)

// ErrorKind classifies every failure surfaced by the Engine. The kind decides
// the HTTP status; token and session problems are 400, not 401.
type ErrorKind uint8

const (
	KindFatal ErrorKind = iota
	KindValidation
	KindInvalidCredentials
	KindInvalidToken
	KindSessionExpired
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidToken:
		return "invalid_token"
	case KindSessionExpired:
		return "session_expired"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

// Status returns the HTTP status code carried by k.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation, KindInvalidCredentials, KindInvalidToken, KindSessionExpired, KindConflict:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed failure with a client-safe message. Sentinel values are
// compared with errors.Is; wrapping with fmt.Errorf("%w: ...") keeps the kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	// ErrEngineNotReady is returned when a required dependency was not wired.
	ErrEngineNotReady = newError(KindFatal, "Authentication engine not ready")
	// ErrMissingFields is returned when a request omits required input.
	ErrMissingFields = newError(KindValidation, "Please enter all required fields")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = newError(KindValidation, "Please enter your email & password")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = newError(KindInvalidCredentials, "Invalid email or password")
	// ErrInvalidPassword is returned when the current password does not match on change.
	ErrInvalidPassword = newError(KindInvalidCredentials, "Invalid password")
	// ErrPasswordNotSet is returned when changing the password of a social-login principal.
	ErrPasswordNotSet = newError(KindValidation, "This account has no password, sign in with your social provider")
	// ErrWeakPassword is returned when a new password is shorter than the policy allows.
	ErrWeakPassword = newError(KindValidation, "Password is too short")
	// ErrPasswordTooLong is returned when a password exceeds the 72-byte bcrypt limit.
	ErrPasswordTooLong = newError(KindValidation, "Password must be at most 72 bytes")
	// ErrMissingToken is returned when the token cookie is absent.
	ErrMissingToken = newError(KindInvalidToken, "Please login to access this resource")
	// ErrInvalidToken is returned for an access token with a bad signature or past expiry.
	ErrInvalidToken = newError(KindInvalidToken, "Access token is not valid!")
	// ErrInvalidRefreshToken is returned for a refresh token with a bad signature or past expiry.
	ErrInvalidRefreshToken = newError(KindInvalidToken, "Refresh token is not valid!")
	// ErrSessionExpired is returned when the session cache has no entry for a verified token.
	ErrSessionExpired = newError(KindSessionExpired, "Please login to access this resource")
	// ErrForbidden is returned when the principal's role is not allowed.
	ErrForbidden = newError(KindForbidden, "You are not authorized to access this resource")
	// ErrInvalidTicket is returned for an activation ticket with a bad signature or past expiry.
	ErrInvalidTicket = newError(KindInvalidToken, "Activation ticket is not valid or has expired")
	// ErrCodeMismatch is returned when the submitted activation code is wrong.
	ErrCodeMismatch = newError(KindValidation, "Invalid activation code")
	// ErrDuplicateEmail is returned when a principal with the email already exists.
	ErrDuplicateEmail = newError(KindConflict, "Email already exists")
	// ErrPrincipalNotFound is returned when no principal matches an id.
	ErrPrincipalNotFound = newError(KindNotFound, "User does not exist")
	// ErrMalformedID is returned when an identifier is not a valid principal id.
	ErrMalformedID = newError(KindNotFound, "Resource not found. Invalid: id")
	// ErrInvalidRole is returned when a role is not one of the known roles.
	ErrInvalidRole = newError(KindValidation, "Invalid role")
	// ErrInvalidAvatar is returned when an avatar upload is empty or not an image.
	ErrInvalidAvatar = newError(KindValidation, "Invalid avatar image")
	// ErrActivationMail is returned when the activation mail could not be handed off.
	ErrActivationMail = newError(KindFatal, "Could not send activation email")
	// ErrSessionBackend is returned when the session cache is unreachable.
	ErrSessionBackend = newError(KindFatal, "Session store unavailable")
	// ErrPrincipalBackend is returned when the identity store fails unexpectedly.
	ErrPrincipalBackend = newError(KindFatal, "Identity store unavailable")
	// ErrTokenSigning is returned when a token cannot be signed; it means the
	// signing configuration is broken.
	ErrTokenSigning = newError(KindFatal, "Token signing failed")
	// ErrMediaBackend is returned when the media provider fails.
	ErrMediaBackend = newError(KindFatal, "Media storage unavailable")
)

// KindOf returns the kind of the first *Error in err's chain, or KindFatal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFatal
}
