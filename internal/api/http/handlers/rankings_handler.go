package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/code-arena/internal/api/dto"
	"github.com/spec-kit/code-arena/internal/service"
)

// RankingsHandler serves the leaderboard.
type RankingsHandler struct {
	rankings *service.RankingService
}

// NewRankingsHandler constructs handler.
func NewRankingsHandler(rankings *service.RankingService) *RankingsHandler {
	return &RankingsHandler{rankings: rankings}
}

// Top GET /api/rankings?limit=.
func (h *RankingsHandler) Top(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultRankingLimit)
	entries, err := h.rankings.Top(c.UserContext(), limit)
	if err != nil {
		return err
	}
	rows := make([]dto.RankingRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, dto.RankingRow{
			Rank:           i + 1,
			UserID:         e.UserID,
			Username:       e.Username,
			Country:        e.Country,
			Points:         e.Points,
			ProblemsSolved: e.ProblemsSolved,
			Tier:           string(e.Tier),
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}
