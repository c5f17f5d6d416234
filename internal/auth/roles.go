package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-gateway/internal/domain"
	"github.com/spec-kit/auth-gateway/internal/observability"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

// Requirement is the capability an endpoint demands of its caller. The zero
// value admits nobody.
type Requirement struct {
	public bool
	anyOf  []string
}

// Public admits every caller, including anonymous ones.
func Public() Requirement {
	return Requirement{public: true}
}

// RequiresAnyOf admits identities holding at least one of roles.
func RequiresAnyOf(roles ...domain.Role) Requirement {
	anyOf := make([]string, 0, len(roles))
	for _, r := range roles {
		anyOf = append(anyOf, string(r))
	}
	return Requirement{anyOf: anyOf}
}

// IsPublic reports whether the requirement admits anonymous callers.
func (r Requirement) IsPublic() bool {
	return r.public
}

func (r Requirement) String() string {
	if r.public {
		return "public"
	}
	return "any_of(" + strings.Join(r.anyOf, ",") + ")"
}

// Allow is the authorization decision. identity is nil for anonymous callers.
func Allow(identity *domain.Identity, req Requirement) bool {
	if req.public {
		return true
	}
	return identity != nil && identity.HasAnyRole(req.anyOf...)
}

// Policy maps endpoints (method plus route pattern) to requirements. Endpoints
// without an explicit entry get the fallback.
type Policy struct {
	rules    map[string]Requirement
	fallback Requirement
}

// NewPolicy returns an empty policy with the given fallback.
func NewPolicy(fallback Requirement) *Policy {
	return &Policy{rules: make(map[string]Requirement), fallback: fallback}
}

// Set declares the requirement for one endpoint.
func (p *Policy) Set(method, path string, req Requirement) *Policy {
	p.rules[policyKey(method, path)] = req
	return p
}

// For returns the requirement of an endpoint.
func (p *Policy) For(method, path string) Requirement {
	if req, ok := p.rules[policyKey(method, path)]; ok {
		return req
	}
	return p.fallback
}

func policyKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Gate enforces requirements after authentication and before handlers.
type Gate struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGate constructs the authorization stage of the request pipeline.
func NewGate(logger *zap.Logger, metrics *observability.Metrics) *Gate {
	return &Gate{logger: logger, metrics: metrics}
}

// Require returns a handler rejecting callers that do not satisfy req:
// anonymous callers get 401, authenticated callers lacking a role get 403.
func (g *Gate) Require(req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if Allow(identity, req) {
			return c.Next()
		}

		if identity == nil {
			return apperrors.NewUnauthorized("authentication required")
		}

		g.logger.Info("access denied",
			zap.String("subject", identity.Subject()),
			zap.Strings("roles", identity.Roles()),
			zap.String("requirement", req.String()),
			zap.String("path", c.Path()),
		)
		g.metrics.RecordAuthFailure(FailureKind(ErrDenied))
		return apperrors.NewForbidden("access denied")
	}
}
