package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/service"
)

// CodeforcesHandler handles Codeforces archive HTTP requests
type CodeforcesHandler struct {
	codeforcesService *service.CodeforcesService
}

// NewCodeforcesHandler creates a new Codeforces handler
func NewCodeforcesHandler(codeforcesService *service.CodeforcesService) *CodeforcesHandler {
	return &CodeforcesHandler{
		codeforcesService: codeforcesService,
	}
}

// GetTable returns the contest-by-letter archive table
// GET /api/codeforces/table?category=div2&handle=tourist
func (h *CodeforcesHandler) GetTable(c *gin.Context) {
	category := domain.ContestCategory(c.DefaultQuery("category", string(domain.CategoryAll)))
	handle := c.Query("handle")

	table, err := h.codeforcesService.Table(c.Request.Context(), category, handle)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFeedNotLoaded):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": domain.ErrFeedUnavailable.Error(),
			})
		case errors.Is(err, domain.ErrHandleRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A Codeforces handle is required",
			})
		case errors.Is(err, domain.ErrJudgeUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Codeforces is unreachable, try again later",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to build contest table",
			})
		}
		return
	}

	c.JSON(http.StatusOK, table)
}
