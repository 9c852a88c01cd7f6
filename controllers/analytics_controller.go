// controllers/analytics_controller.go
package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GET /analytics/summary?from=&to=  (defaults to the last seven days)
func (h *AnalyticsController) GetAnalyticsSummary(c *gin.Context) {
	out, err := h.Svc.Summary(c.Request.Context(), userIDFromCtx(c), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /analytics/weekly?date=
func (h *AnalyticsController) GetWeeklyOverview(c *gin.Context) {
	out, err := h.Svc.WeeklyOverview(c.Request.Context(), userIDFromCtx(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
