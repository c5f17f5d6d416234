package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-gateway/internal/domain"
)

// MinSigningKeyLen is the smallest HS512 secret accepted, in bytes.
const MinSigningKeyLen = 64

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < MinSigningKeyLen {
		return nil, ErrWeakSigningKey
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Claims describes JWT payload.
type Claims struct {
	Roles []string `json:"userRoles"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token for subject valid from now until now+ttl.
func (tm *TokenManager) Issue(subject string, roles []string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrEmptySubject
	}
	if ttl <= 0 {
		return "", time.Time{}, ErrInvalidTTL
	}

	expiresAt := now.Add(ttl)
	claims := &Claims{
		Roles: domain.NewIdentity(subject, roles...).Roles(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// IssueFor issues a token for an established identity using the configured TTL.
func (tm *TokenManager) IssueFor(identity *domain.Identity, now time.Time) (string, time.Time, error) {
	if identity == nil {
		return "", time.Time{}, ErrEmptySubject
	}
	return tm.Issue(identity.Subject(), identity.Roles(), now, tm.ttl)
}

// Verify checks the signature and expiry of tokenStr as of now and returns
// the identity it asserts. Failures are ErrTokenMalformed, ErrTokenForged or
// ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string, now time.Time) (*domain.Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, classify(tokenStr, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenForged
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	return domain.NewIdentity(claims.Subject, claims.Roles...), nil
}

// classify maps a jwt parse error onto the codec's failure kinds. The
// signature is verified before any claim, so a token that is both forged and
// expired reports ErrTokenForged.
func classify(tokenStr string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenForged, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		// Header and claims intact means only the signature segment failed to
		// decode, which is a signature mismatch rather than a shape problem.
		if _, _, uerr := jwt.NewParser().ParseUnverified(tokenStr, &Claims{}); uerr == nil {
			return fmt.Errorf("%w: %v", ErrTokenForged, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
