// Package auth registers accounts, checks passwords and manages the Redis
// sessions that identify callers of the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"storefront/pkg/account"
	"storefront/pkg/logger"
	"storefront/pkg/otel"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidInput indicates a malformed registration.
	ErrInvalidInput = errors.New("invalid registration")
)

// RegisterRequest is the payload of a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration fields.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// Service owns account creation and the session lifecycle.
type Service struct {
	accounts account.Repository
	sessions *SessionStore
	log      *logger.Logger

	cost  int
	now   func() time.Time
	newID func() string
}

// NewService creates a Service.
func NewService(accounts account.Repository, sessions *SessionStore, log *logger.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		log:      log,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Sessions exposes the session store.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// Register creates a user account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (account.Account, string, error) {
	ctx, span := otel.AddSpan(ctx, "auth.Register")
	defer span.End()

	if err := req.Validate(); err != nil {
		return account.Account{}, "", err
	}
	a, err := s.create(ctx, req, account.RoleUser)
	if err != nil {
		return account.Account{}, "", err
	}
	sid, err := s.sessions.Create(ctx, a.Actor())
	if err != nil {
		return account.Account{}, "", err
	}
	s.log.Info(ctx, "account registered", "account", a.ID)
	return a, sid, nil
}

func (s *Service) create(ctx context.Context, req RegisterRequest, role account.Role) (account.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return account.Account{}, fmt.Errorf("hashing password: %w", err)
	}
	a := account.Account{
		ID:           s.newID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        account.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         role,
		Cart:         []account.CartItem{},
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return account.Account{}, err
	}
	return a, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (account.Account, string, error) {
	ctx, span := otel.AddSpan(ctx, "auth.Login")
	defer span.End()

	a, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		return account.Account{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return account.Account{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		s.log.Warn(ctx, "login rejected", "account", a.ID)
		return account.Account{}, "", ErrInvalidCredentials
	}
	sid, err := s.sessions.Create(ctx, a.Actor())
	if err != nil {
		return account.Account{}, "", err
	}
	span.SetAttributes(attribute.String("account", a.ID))
	return a, sid, nil
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context, sid string) error {
	return s.sessions.Delete(ctx, sid)
}

// Authenticate resolves a session id to the calling actor.
func (s *Service) Authenticate(ctx context.Context, sid string) (account.Actor, error) {
	return s.sessions.Get(ctx, sid)
}

// Me returns the actor's account.
func (s *Service) Me(ctx context.Context, actor account.Actor) (account.Account, error) {
	return s.accounts.Get(ctx, actor.ID)
}

// EnsureAdmin creates an admin account for email unless one exists. An
// existing account with that email is promoted to admin.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	req := RegisterRequest{Name: name, Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, account.ErrNotFound):
		a, err = s.create(ctx, req, account.RoleAdmin)
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		s.log.Info(ctx, "admin created", "account", a.ID)
		return nil
	case err != nil:
		return err
	case a.Role == account.RoleAdmin:
		return nil
	}
	a.Role = account.RoleAdmin
	if err := s.accounts.Save(ctx, a); err != nil {
		return fmt.Errorf("promoting admin: %w", err)
	}
	s.log.Info(ctx, "account promoted to admin", "account", a.ID)
	return nil
}
