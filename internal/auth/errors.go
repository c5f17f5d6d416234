package auth

import "errors"

// Authentication failures. Callers surface all of them as one opaque 401;
// the distinct kind is for server-side logs only.
var (
	ErrNotFound       = errors.New("auth: user not found")
	ErrBadCredentials = errors.New("auth: bad credentials")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenForged    = errors.New("auth: token signature mismatch")
)

// ErrDenied is the authorization failure (403).
var ErrDenied = errors.New("auth: access denied")

// Configuration and input errors of the token codec.
var (
	ErrWeakSigningKey = errors.New("auth: signing key shorter than 64 bytes")
	ErrEmptySubject   = errors.New("auth: empty subject")
	ErrInvalidTTL     = errors.New("auth: token ttl must be positive")
)

// FailureKind returns a short label for an auth failure, suitable for log
// fields and metric labels. Unknown errors yield "internal".
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenForged):
		return "forged"
	case errors.Is(err, ErrDenied):
		return "denied"
	default:
		return "internal"
	}
}

// IsAuthenticationFailure reports whether err must be answered with a 401.
func IsAuthenticationFailure(err error) bool {
	switch FailureKind(err) {
	case "not_found", "bad_credentials", "malformed", "expired", "forged":
		return true
	}
	return false
}
