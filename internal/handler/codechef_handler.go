package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/middleware"
	"github.com/codeladder/dashboard/internal/service"
)

// CodeChefHandler handles CodeChef dashboard HTTP requests
type CodeChefHandler struct {
	codechefService *service.CodeChefService
}

// NewCodeChefHandler creates a new CodeChef handler
func NewCodeChefHandler(codechefService *service.CodeChefService) *CodeChefHandler {
	return &CodeChefHandler{
		codechefService: codechefService,
	}
}

// GetContests returns the grouped CodeChef table
// GET /api/codechef/contests?q=...&hide_completed=true
func (h *CodeChefHandler) GetContests(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	query := c.Query("q")
	hideCompleted := c.Query("hide_completed") == "true"

	dashboard, err := h.codechefService.Dashboard(c.Request.Context(), session, query, hideCompleted)
	if err != nil {
		if errors.Is(err, domain.ErrFeedNotLoaded) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": domain.ErrFeedUnavailable.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build contest table",
		})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ToggleSolved flips the local solved mark on one problem
// POST /api/codechef/contests/:contest/problems/:code/toggle
func (h *CodeChefHandler) ToggleSolved(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	contestCode := c.Param("contest")
	problemCode := c.Param("code")

	solved, err := h.codechefService.Toggle(c.Request.Context(), session, contestCode, problemCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProblemNotTracked):
			c.JSON(http.StatusNotFound, gin.H{
				"error": domain.ErrProblemNotTracked.Error(),
			})
		case errors.Is(err, domain.ErrFeedNotLoaded):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": domain.ErrFeedUnavailable.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to toggle solved mark",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contest": contestCode,
		"code":    problemCode,
		"solved":  solved,
	})
}

// ResetProgress clears all of the caller's solved marks
// DELETE /api/codechef/progress
func (h *CodeChefHandler) ResetProgress(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	if err := h.codechefService.Reset(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reset progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Progress reset",
	})
}
