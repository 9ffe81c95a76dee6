package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

func newAuthService(f *fixture) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	return NewAuthService(cfg, AuthDependencies{UserRepo: f.users, Dispatcher: f.dispatcher})
}

func validSignup() SignupInput {
	return SignupInput{
		Username: "ada", Email: "Ada@Example.com", Password: "secret1",
		Country: "UK", Institute: "KCL", Course: "CS",
	}
}

func TestRegisterUserStartsAtZero(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	result, err := svc.RegisterUser(context.Background(), validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Equal(t, int64(0), result.User.Points)
	assert.Equal(t, domain.TierBronzeIII, result.User.Tier)
	assert.Equal(t, domain.UserRoleMember, result.User.Role)
	assert.Len(t, f.recorder.ofType(events.EventUserRegistered), 1)

	claims, err := svc.TokenManager().ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.SubjectID)
}

func TestRegisterUserConflicts(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, err := svc.RegisterUser(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), validSignup())
	assert.True(t, errors.Is(err, ErrEmailTaken))

	input := validSignup()
	input.Email = "other@example.com"
	_, err = svc.RegisterUser(context.Background(), input)
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}

func TestRegisterUserValidates(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	input := validSignup()
	input.Email = "not-an-email"
	input.Password = "123"

	_, err := svc.RegisterUser(context.Background(), input)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
}

func TestLoginUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, err := svc.RegisterUser(context.Background(), validSignup())
	require.NoError(t, err)

	result, err := svc.LoginUser(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada", result.User.Username)

	_, err = svc.LoginUser(context.Background(), "ada@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidLogin))
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.LoginUser(context.Background(), "nobody@example.com", "secret1")
	assert.True(t, errors.Is(err, ErrInvalidLogin))
}

func TestRegisterUserRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	input := validSignup()
	input.Password = strings.Repeat("p", 80)

	_, err := svc.RegisterUser(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Empty(t, f.recorder.ofType(events.EventUserRegistered))
}

func TestLoginUserWithCorruptHashIsInternal(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	user := domain.NewUser("bob", "bob@example.com", "not-a-bcrypt-hash", "", "", "")
	require.NoError(t, f.users.Create(context.Background(), user))

	_, err := svc.LoginUser(context.Background(), "bob@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
}
