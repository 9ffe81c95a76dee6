package service

import (
	"errors"
	"net/http"

	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProblemNotFound = errors.New("problem not found")
	ErrAlreadySolved   = errors.New("problem already solved by this user")
	ErrEmailTaken      = errors.New("email already in use")
	ErrUsernameTaken   = errors.New("username already in use")
	ErrInvalidLogin    = errors.New("invalid email or password")
)

func userNotFound(userID string) error {
	return apperrors.NewNotFoundCode("USER_NOT_FOUND", "user", ErrUserNotFound, map[string]any{"user_id": userID})
}

func problemNotFound(problemID string) error {
	return apperrors.NewNotFoundCode("PROBLEM_NOT_FOUND", "problem", ErrProblemNotFound, map[string]any{"problem_id": problemID})
}

func invalidLogin() error {
	return apperrors.NewDomainError("UNAUTHORIZED", ErrInvalidLogin.Error(), http.StatusUnauthorized, nil).Wrap(ErrInvalidLogin)
}
