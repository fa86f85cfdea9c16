package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/middleware"
	"github.com/codeladder/dashboard/internal/service"
)

// LeetCodeHandler handles LeetCode dashboard HTTP requests
type LeetCodeHandler struct {
	leetcodeService *service.LeetCodeService
}

// NewLeetCodeHandler creates a new LeetCode handler
func NewLeetCodeHandler(leetcodeService *service.LeetCodeService) *LeetCodeHandler {
	return &LeetCodeHandler{
		leetcodeService: leetcodeService,
	}
}

// GetContests returns the grouped LeetCode table joined with ledger state
// GET /api/leetcode/contests?q=...&hide_completed=true&type=weekly
func (h *LeetCodeHandler) GetContests(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	query := c.Query("q")
	hideCompleted := c.Query("hide_completed") == "true"
	contestType := domain.ContestType(c.Query("type"))

	dashboard, err := h.leetcodeService.Dashboard(c.Request.Context(), session, query, hideCompleted, contestType)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetSkills returns the solved-tag skill panel
// GET /api/leetcode/skills
func (h *LeetCodeHandler) GetSkills(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	panel, err := h.leetcodeService.Skills(c.Request.Context(), session)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, panel)
}

// writeLedgerJoinError maps the shared feed/ledger failure modes of the
// join-heavy dashboards to HTTP responses.
func writeLedgerJoinError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrFeedNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": domain.ErrFeedUnavailable.Error(),
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": domain.ErrInvalidCredentials.Error(),
		})
	case errors.Is(err, domain.ErrLedgerUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Ledger is unreachable and no cached copy exists",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": domain.ErrInternalServer.Error(),
		})
	}
}
