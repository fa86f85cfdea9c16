package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/middleware"
	"github.com/codeladder/dashboard/internal/service"
)

// CalendarHandler handles submission calendar HTTP requests
type CalendarHandler struct {
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// GetCalendar returns the yearly activity heatmap and streak stats
// GET /api/calendar?year=2026
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	session, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var year int
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid year",
			})
			return
		}
		year = parsed
	}

	calendar, err := h.calendarService.Year(c.Request.Context(), session, year)
	if err != nil {
		writeLedgerJoinError(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar)
}
