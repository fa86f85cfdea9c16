package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/middleware"
	"github.com/codeladder/dashboard/internal/service"
)

// ProblemsetHandler handles tracked-problemset HTTP requests
type ProblemsetHandler struct {
	problemsetService *service.ProblemsetService
}

// NewProblemsetHandler creates a new problemset handler
func NewProblemsetHandler(problemsetService *service.ProblemsetService) *ProblemsetHandler {
	return &ProblemsetHandler{
		problemsetService: problemsetService,
	}
}

// GetProblemset returns the filtered tracked-problem list
// GET /api/problemset?q=...&hide_solved=true&tags=dp&tags=graphs
func (h *ProblemsetHandler) GetProblemset(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	filter := service.ProblemsetFilter{
		Query:      c.Query("q"),
		HideSolved: c.Query("hide_solved") == "true",
		Tags:       c.QueryArray("tags"),
	}

	page, err := h.problemsetService.List(c.Request.Context(), session, filter)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTags returns every distinct tag, sorted
// GET /api/problemset/tags
func (h *ProblemsetHandler) GetTags(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	tags, err := h.problemsetService.Tags(c.Request.Context(), session)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// GetAnalytics returns the caller's per-tag solved breakdown
// GET /api/problemset/analytics
func (h *ProblemsetHandler) GetAnalytics(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	analytics, err := h.problemsetService.Analytics(c.Request.Context(), session)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// MarkRequest represents a mark/unmark request body
type MarkRequest struct {
	Link string `json:"link" binding:"required"`
}

// MarkSolved records a problem as solved in the ledger
// PATCH /api/problems/mark
func (h *ProblemsetHandler) MarkSolved(c *gin.Context) {
	h.applyMark(c, h.problemsetService.Mark, domain.ErrMarkFailed)
}

// UnmarkSolved removes the solved record from the ledger
// PATCH /api/problems/unmark
func (h *ProblemsetHandler) UnmarkSolved(c *gin.Context) {
	h.applyMark(c, h.problemsetService.Unmark, domain.ErrUnmarkFailed)
}

func (h *ProblemsetHandler) applyMark(
	c *gin.Context,
	apply func(ctx context.Context, session domain.Session, link string) (*domain.LedgerEntry, error),
	failure error,
) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	entry, err := apply(c.Request.Context(), session, req.Link)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProblemNotTracked):
			c.JSON(http.StatusNotFound, gin.H{
				"error": domain.ErrProblemNotTracked.Error(),
			})
		case errors.Is(err, domain.ErrBadRequest):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A problem link is required",
			})
		case errors.Is(err, failure):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": failure.Error(),
			})
		default:
			writeLedgerJoinError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}
