package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/infra/security"
	"github.com/commercekit/shop-platform/internal/repository"
)

const strongRegistrationPassword = "Sup3r!SecurePass#7890"

type mockUserRepository struct {
	createErr   error
	createCalls int
	createdUser domain.User

	users map[string]domain.User

	getErr error
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) error {
	m.createCalls++
	m.createdUser = user
	if m.createErr != nil {
		return m.createErr
	}
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, ok := m.users[username]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

type recordingPublisher struct {
	registered []domain.UserRegisteredEvent
	err        error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.registered = append(p.registered, event)
	return p.err
}

func (p *recordingPublisher) PublishOrderCreated(context.Context, domain.OrderCreatedEvent) error {
	return nil
}

func (p *recordingPublisher) PublishOrderUpdated(context.Context, domain.OrderUpdatedEvent) error {
	return nil
}

func (p *recordingPublisher) PublishOrderDeleted(context.Context, domain.OrderDeletedEvent) error {
	return nil
}

func (p *recordingPublisher) PublishProductChanged(context.Context, domain.ProductChangedEvent) error {
	return nil
}

func newIdentityService(t *testing.T, users *mockUserRepository, publisher *recordingPublisher) *IdentityService {
	t.Helper()

	codec, err := auth.NewCodec("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}

	return NewIdentityService(users, codec, security.NewPasswordPolicy(), publisher, zaptest.NewLogger(t))
}

func TestRegisterAssignsUserRole(t *testing.T) {
	users := &mockUserRepository{}
	publisher := &recordingPublisher{}
	svc := newIdentityService(t, users, publisher)

	user, err := svc.Register(context.Background(), "alice", strongRegistrationPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", user.Role)
	}
	if user.PasswordHash == strongRegistrationPassword {
		t.Fatal("password stored without hashing")
	}
	if users.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", users.createCalls)
	}
	if len(publisher.registered) != 1 {
		t.Fatalf("expected user registered event, got %d", len(publisher.registered))
	}
	if publisher.registered[0].Username != "alice" {
		t.Fatalf("unexpected event username: %s", publisher.registered[0].Username)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	users := &mockUserRepository{}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if _, err := svc.Register(context.Background(), "alice", "password1"); !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if users.createCalls != 0 {
		t.Fatal("weak password must not reach the repository")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	users := &mockUserRepository{users: map[string]domain.User{
		"alice": {ID: "user-1", Username: "alice"},
	}}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if _, err := svc.Register(context.Background(), "alice", strongRegistrationPassword); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	users := &mockUserRepository{}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if _, err := svc.Register(context.Background(), "alice", strongRegistrationPassword); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "alice", strongRegistrationPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %s", user.Username)
	}

	codec, err := auth.NewCodec("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewCodec: %v", err)
	}

	principal, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if principal.Identifier != "alice" {
		t.Fatalf("unexpected principal identifier: %s", principal.Identifier)
	}
	if !principal.HasRole(domain.RoleUser) {
		t.Fatalf("expected USER role in token, got %v", principal.Roles)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := &mockUserRepository{}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if _, err := svc.Register(context.Background(), "alice", strongRegistrationPassword); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "alice", "Wrong!Password#123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserMapsToInvalidCredentials(t *testing.T) {
	svc := newIdentityService(t, &mockUserRepository{}, &recordingPublisher{})

	if _, _, err := svc.Login(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginStoreFailureIsNotInvalidCredentials(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := newIdentityService(t, &mockUserRepository{getErr: storeErr}, &recordingPublisher{})

	_, _, err := svc.Login(context.Background(), "alice", strongRegistrationPassword)
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("store failure must not map to invalid credentials")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	users := &mockUserRepository{}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if err := svc.EnsureAdmin(context.Background(), "root", "Operator!Secret#42"); err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if users.createdUser.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", users.createdUser.Role)
	}

	if err := svc.EnsureAdmin(context.Background(), "root", "Operator!Secret#42"); err != nil {
		t.Fatalf("EnsureAdmin second run returned error: %v", err)
	}
	if users.createCalls != 1 {
		t.Fatalf("expected single create call, got %d", users.createCalls)
	}
}

func TestEnsureAdminSkipsWhenUnconfigured(t *testing.T) {
	users := &mockUserRepository{}
	svc := newIdentityService(t, users, &recordingPublisher{})

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if users.createCalls != 0 {
		t.Fatal("empty admin settings must not create an account")
	}
}
