package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/code-arena/internal/api/dto"
	"github.com/spec-kit/code-arena/internal/auth"
	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/service"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

// UsersHandler exposes signup, login and profile endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Signup handles POST /auth/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.UserSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}

	result, err := h.auth.RegisterUser(c.UserContext(), service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Country:   req.Country,
		Institute: req.Institute,
		Course:    req.Course,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authPayload(result)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authPayload(result)})
}

// Me handles GET /api/user.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	user, err := h.users.Profile(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userProfile(user)})
}

// Stats handles GET /api/user/stats.
func (h *UsersHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.users.Stats(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserStats{
		Points:         stats.Points,
		Tier:           string(stats.Tier),
		ProblemsSolved: stats.ProblemsSolved,
	}})
}

func authPayload(result *service.AuthResult) fiber.Map {
	return fiber.Map{
		"user": userProfile(result.User),
		"auth": dto.AuthResponse{Token: result.AccessToken, ExpiresAt: result.Token.ExpiresAt},
	}
}

func userProfile(user *domain.User) dto.UserProfile {
	solved := user.SolvedProblems
	if solved == nil {
		solved = []string{}
	}
	return dto.UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Country:        user.Country,
		Institute:      user.Institute,
		Course:         user.Course,
		Role:           string(user.Role),
		Points:         user.Points,
		Tier:           string(domain.TierOf(user.Points)),
		ProblemsSolved: user.ProblemsSolved,
		SolvedProblems: solved,
		CreatedAt:      user.CreatedAt,
	}
}
