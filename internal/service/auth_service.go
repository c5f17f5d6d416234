package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-gateway/internal/auth"
	"github.com/spec-kit/auth-gateway/internal/domain"
	"github.com/spec-kit/auth-gateway/internal/events"
	"github.com/spec-kit/auth-gateway/internal/repository"
	apperrors "github.com/spec-kit/auth-gateway/pkg/util"
)

// Session is the result of a successful login.
type Session struct {
	Identity  *domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users     repository.UserRepository
	hasher    auth.PasswordHasher
	tokenMgr  *auth.TokenManager
	events    events.Dispatcher
	logger    *zap.Logger
	now       func() time.Time
	dummyHash string
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.PasswordHasher
	Tokens   *auth.TokenManager
	Events   events.Dispatcher
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	if deps.UserRepo == nil || deps.Hasher == nil || deps.Tokens == nil {
		return nil, errors.New("auth service: user repository, hasher and token manager are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Compared against when the username is unknown so both failure paths
	// cost one hash comparison.
	dummy, err := deps.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}

	return &AuthService{
		users:     deps.UserRepo,
		hasher:    deps.Hasher,
		tokenMgr:  deps.Tokens,
		events:    deps.Events,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates a new account. Validation problems are reported together
// as a VALIDATION_FAILED error whose details carry "validateErrors".
func (s *AuthService) Register(ctx context.Context, name, password, role string) (*domain.User, error) {
	var problems []string
	if name == "" {
		problems = append(problems, "userName is required")
	}
	if password == "" {
		problems = append(problems, "userPassword is required")
	}
	if name != "" {
		exists, err := s.users.Exists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check user %q: %w", name, err)
		}
		if exists {
			problems = append(problems, userExistsMessage(name))
		}
	}
	parsedRole, ok := domain.ParseRole(role)
	if !ok {
		problems = append(problems, fmt.Sprintf("userRole '%s' is wrong", role))
	}
	if len(problems) > 0 {
		return nil, validationError(problems)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Name: name, PasswordHash: hash, Role: parsedRole}
	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, validationError([]string{userExistsMessage(name)})
		}
		return nil, fmt.Errorf("add user %q: %w", name, err)
	}

	s.publish(ctx, events.EventUserRegistered, name, events.UserRegisteredPayload{Role: string(parsedRole)})
	return user, nil
}

// VerifyCredentials checks a username and password against the store. It
// fails with auth.ErrNotFound or auth.ErrBadCredentials; callers must not
// reveal which.
func (s *AuthService) VerifyCredentials(ctx context.Context, name, password string) (*domain.Identity, error) {
	user, err := s.users.Find(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("find user %q: %w", name, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			return nil, auth.ErrBadCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return domain.NewIdentity(user.Name, string(user.Role)), nil
}

// Login authenticates a user and issues a token for the resulting identity.
func (s *AuthService) Login(ctx context.Context, name, password string) (*Session, error) {
	identity, err := s.VerifyCredentials(ctx, name, password)
	if err != nil {
		if auth.IsAuthenticationFailure(err) {
			s.publish(ctx, events.EventLoginFailed, name, events.LoginFailedPayload{Reason: auth.FailureKind(err)})
		}
		return nil, err
	}

	token, exp, err := s.tokenMgr.IssueFor(identity, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventLoginSucceeded, name, events.LoginSucceededPayload{
		Roles:     identity.Roles(),
		ExpiresAt: exp,
	})
	return &Session{Identity: identity, Token: token, ExpiresAt: exp}, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ *domain.Identity) error {
	return nil
}

// FindUser returns one stored user.
func (s *AuthService) FindUser(ctx context.Context, name string) (*domain.User, error) {
	user, err := s.users.Find(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"userName": name})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns all stored users ordered by name.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, t events.EventType, subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Subject:   subject,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("event", string(t)), zap.Error(err))
	}
}

func userExistsMessage(name string) string {
	return fmt.Sprintf("userName '%s' is exist", name)
}

func validationError(problems []string) error {
	return apperrors.NewValidationError("validation failed", map[string]any{"validateErrors": problems})
}
