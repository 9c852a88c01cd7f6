package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type DailyLogController struct {
	Logs *services.DailyLogService
}

func NewDailyLogController(s *services.DailyLogService) *DailyLogController {
	return &DailyLogController{Logs: s}
}

// GET /daily?date=YYYY-MM-DD
func (h *DailyLogController) GetDay(c *gin.Context) {
	date, err := h.Logs.ResolveDate(c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Logs.GetDay(userIDFromCtx(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type waterReq struct {
	Date    string   `json:"date"`
	Glasses *float64 `json:"glasses" binding:"required"`
}

// PUT /daily/water
func (h *DailyLogController) SetWater(c *gin.Context) {
	var req waterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := h.Logs.ResolveDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	dl, err := h.Logs.SetWater(userIDFromCtx(c), date, *req.Glasses)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dl)
}

// GET /daily/history?from=&to=
func (h *DailyLogController) History(c *gin.Context) {
	to := c.DefaultQuery("to", h.Logs.Today())
	from := c.Query("from")
	if from == "" {
		from = to
	}
	out, err := h.Logs.History(userIDFromCtx(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
