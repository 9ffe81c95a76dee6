package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/code-arena/internal/auth"
	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/repository"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

const minPasswordLength = 6

// SignupInput carries the registration form.
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	Country   string
	Institute string
	Course    string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	Token       *domain.Token
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterUser creates a new account with zero points and the lowest tier.
func (s *AuthService) RegisterUser(ctx context.Context, input SignupInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateSignup(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflictCode("EMAIL_TAKEN", ErrEmailTaken.Error(), ErrEmailTaken, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := domain.NewUser(input.Username, input.Email, hash, input.Country, input.Institute, input.Course)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// email was free a moment ago, so the username is what collided
			return nil, apperrors.NewConflictCode("USERNAME_TAKEN", ErrUsernameTaken.Error(), ErrUsernameTaken,
				map[string]any{"username": input.Username})
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("create user: %w", err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			UserID:    user.ID,
			Timestamp: time.Now().UTC(),
			Payload:   events.UserRegisteredPayload{Entry: domain.RankingEntryOf(user)},
		})
	}
	return s.issue(user)
}

// LoginUser authenticates an account by email and password.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalidLogin()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("lookup email: %w", err))
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, invalidLogin()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("user %s: %w", user.ID, err))
	}
	return s.issue(user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	meta, signed, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("sign token: %w", err))
	}
	return &AuthResult{User: user, AccessToken: signed, Token: meta}, nil
}

func validateSignup(input SignupInput) error {
	details := map[string]any{}
	if input.Username == "" {
		details["username"] = "required"
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		details["email"] = "invalid"
	}
	if len(input.Password) < minPasswordLength {
		details["password"] = fmt.Sprintf("at least %d characters", minPasswordLength)
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid signup", details)
	}
	return nil
}
