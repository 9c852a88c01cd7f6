package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type MeasurementController struct {
	Measurements *services.BodyMeasurementService
}

func NewMeasurementController(s *services.BodyMeasurementService) *MeasurementController {
	return &MeasurementController{Measurements: s}
}

func (h *MeasurementController) list(c *gin.Context, userID uint) {
	out, err := h.Measurements.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MeasurementController) record(c *gin.Context, userID uint) {
	var in services.MeasurementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Measurements.Record(userID, userIDFromCtx(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MeasurementController) List(c *gin.Context)   { h.list(c, userIDFromCtx(c)) }
func (h *MeasurementController) Record(c *gin.Context) { h.record(c, userIDFromCtx(c)) }

// POST /measurements/weight
func (h *MeasurementController) QuickWeight(c *gin.Context) {
	var body struct {
		Weight float64 `json:"body_weight" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.Measurements.QuickWeight(userIDFromCtx(c), body.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MeasurementController) Trend(c *gin.Context) {
	t, err := h.Measurements.Trend(userIDFromCtx(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *MeasurementController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.Measurements.Delete(userIDFromCtx(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- admin, on behalf of a client ----------

func (h *MeasurementController) ClientList(c *gin.Context) {
	if id, ok := uintParam(c, "id"); ok {
		h.list(c, id)
	}
}

func (h *MeasurementController) ClientRecord(c *gin.Context) {
	if id, ok := uintParam(c, "id"); ok {
		h.record(c, id)
	}
}
