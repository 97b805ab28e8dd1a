package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/infra/security"
	"github.com/commercekit/shop-platform/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided username or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrUsernameTaken indicates the requested username already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// PasswordPolicy validates candidate passwords at registration.
type PasswordPolicy interface {
	Validate(password, username string) error
}

// IdentityService handles registration and credential verification. It is
// the only component that touches the credential store; token verification
// elsewhere never calls back into it.
type IdentityService struct {
	users     port.UserRepository
	codec     *auth.Codec
	policy    PasswordPolicy
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(users port.UserRepository, codec *auth.Codec, policy PasswordPolicy, publisher port.EventPublisher, logger *zap.Logger) *IdentityService {
	if policy == nil {
		policy = security.NewPasswordPolicy()
	}
	return &IdentityService{users: users, codec: codec, policy: policy, publisher: publisher, logger: logger}
}

// Register creates a new account with the USER role.
func (s *IdentityService) Register(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("username is required")
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return domain.User{}, fmt.Errorf("password is required")
	}

	if err := s.policy.Validate(password, username); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			UserID:       user.ID,
			Username:     user.Username,
			Role:         user.Role,
			RegisteredAt: user.RegisteredAt,
		}
		if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("failed to publish user registered event",
				zap.String("username", user.Username),
				zap.Error(err),
			)
		}
	}

	return user, nil
}

// Login verifies credentials and issues a token carrying the user's role set
// as it exists right now. The roles inside the token stay fixed for its
// lifetime even if the stored role changes afterwards.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", domain.User{}, ErrInvalidCredentials
	}

	principal := user.Principal()
	token, err := s.codec.Issue(principal.Identifier, principal.Roles)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *user, nil
}

// EnsureAdmin seeds the bootstrap administrator account if it does not exist.
// The admin password bypasses the registration policy since it is operator
// provisioned.
func (s *IdentityService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	s.logger.Info("seeded bootstrap admin account", zap.String("username", username))
	return nil
}
