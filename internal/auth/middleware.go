package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-gateway/internal/domain"
	"github.com/spec-kit/auth-gateway/internal/observability"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

const identityKey = "auth_identity"

// MsgAuthenticationFailed is the only message a client ever sees for a 401
// caused by credentials or tokens.
const MsgAuthenticationFailed = "authentication failed"

// BearerToken extracts the token from an Authorization header value. Any
// other scheme, or an empty token, reports false.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticator validates bearer tokens and establishes the request identity.
type Authenticator struct {
	tokens  *TokenManager
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewAuthenticator constructs the authentication stage of the request pipeline.
func NewAuthenticator(tokens *TokenManager, logger *zap.Logger, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger, metrics: metrics, now: time.Now}
}

// AuthenticateRequest resolves the caller from a raw Authorization header.
// A nil identity with a nil error means the caller is anonymous.
func (a *Authenticator) AuthenticateRequest(rawHeader string, now time.Time) (*domain.Identity, error) {
	token, ok := BearerToken(rawHeader)
	if !ok {
		return nil, nil
	}
	return a.tokens.Verify(token, now)
}

// Handle runs on every request. A presented token that fails verification
// terminates the request with 401; no token lets it continue anonymously.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	identity, err := a.AuthenticateRequest(c.Get(fiber.HeaderAuthorization), a.now())
	if err != nil {
		reason := FailureKind(err)
		a.logger.Warn("token rejected",
			zap.String("reason", reason),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		a.metrics.RecordAuthFailure(reason)
		return apperrors.NewUnauthorized(MsgAuthenticationFailed)
	}

	if identity != nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

// IdentityFromContext retrieves the identity established for the request.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}
