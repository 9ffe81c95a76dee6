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

// ProblemsHandler manages catalog reads, admin creation and solving.
type ProblemsHandler struct {
	problems    *service.ProblemService
	progression *service.ProgressionService
}

// NewProblemsHandler constructs handler.
func NewProblemsHandler(problems *service.ProblemService, progression *service.ProgressionService) *ProblemsHandler {
	return &ProblemsHandler{problems: problems, progression: progression}
}

// ListProblems GET /api/problems.
func (h *ProblemsHandler) ListProblems(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.problems.ListForUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ProblemSummary, 0, len(views))
	for i := range views {
		items = append(items, problemSummary(&views[i].Problem, views[i].Solved))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProblem GET /api/problems/:id.
func (h *ProblemsHandler) GetProblem(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	view, err := h.problems.GetForUser(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": problemDetail(&view.Problem, view.Solved)})
}

// CreateProblem POST /api/problems.
func (h *ProblemsHandler) CreateProblem(c *fiber.Ctx) error {
	var req dto.CreateProblemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	problem, err := h.problems.Create(c.UserContext(), service.ProblemCreateInput{
		ID:          req.ID,
		Title:       req.Title,
		Difficulty:  req.Difficulty,
		Category:    req.Category,
		Order:       req.Order,
		Description: req.Description,
		Examples:    req.Examples,
		Constraints: req.Constraints,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": problemDetail(problem, false)})
}

// SolveProblem PATCH /api/problems/:problemId/solve.
func (h *ProblemsHandler) SolveProblem(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	problemID := c.Params("problemId")
	if problemID == "" {
		return apperrors.NewValidationError("problemId required", nil)
	}

	result, err := h.progression.SolveProblem(c.UserContext(), principal.User.ID, problemID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SolveResponse{
		AwardedPoints:  result.AwardedPoints,
		OldTier:        string(result.OldTier),
		NewTier:        string(result.NewTier),
		NewTotalPoints: result.NewTotalPoints,
		ProblemsSolved: result.ProblemsSolved,
	}})
}

func problemSummary(p *domain.Problem, solved bool) dto.ProblemSummary {
	flag := "No"
	if solved {
		flag = "Yes"
	}
	return dto.ProblemSummary{
		ID:         p.ID,
		Title:      p.Title,
		Difficulty: string(p.Difficulty),
		Category:   p.Category,
		Order:      p.Order,
		Points:     p.Points,
		Solved:     flag,
	}
}

func problemDetail(p *domain.Problem, solved bool) dto.ProblemDetail {
	examples, constraints := p.Examples, p.Constraints
	if examples == nil {
		examples = []string{}
	}
	if constraints == nil {
		constraints = []string{}
	}
	return dto.ProblemDetail{
		ProblemSummary: problemSummary(p, solved),
		Description:    p.Description,
		Examples:       examples,
		Constraints:    constraints,
		CreatedAt:      p.CreatedAt,
	}
}
