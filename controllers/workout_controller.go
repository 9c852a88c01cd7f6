package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type WorkoutController struct {
	Workouts *services.WorkoutService
}

func NewWorkoutController(s *services.WorkoutService) *WorkoutController {
	return &WorkoutController{Workouts: s}
}

// GET /workouts?from=&to=
func (h *WorkoutController) List(c *gin.Context) {
	out, err := h.Workouts.List(userIDFromCtx(c), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *WorkoutController) Add(c *gin.Context) {
	var in services.WorkoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.Workouts.Add(userIDFromCtx(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WorkoutController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.Workouts.Delete(userIDFromCtx(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /workouts/week?date=
func (h *WorkoutController) Week(c *gin.Context) {
	w, err := h.Workouts.Week(userIDFromCtx(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
