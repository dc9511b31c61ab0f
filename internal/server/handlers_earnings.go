// handlers_earnings.go: the earnings report endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/globalcluster/referral-backend/internal/common"
)

// GET /api/earnings/report?date=2006-01-02
func (s *Server) handleEarningsReport(c *gin.Context) {
	var selected *time.Time
	if raw := c.Query("date"); raw != "" {
		day, err := common.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		selected = &day
	}

	report, err := s.reporting.Report(c.Request.Context(), currentUserID(c), selected)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
