package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	Recs *services.RecommendationService
}

func NewRecommendationController(s *services.RecommendationService) *RecommendationController {
	return &RecommendationController{Recs: s}
}

// GET /recommendations?date=
func (h *RecommendationController) Get(c *gin.Context) {
	out, err := h.Recs.Suggest(userIDFromCtx(c), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}
