package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

// ContentController serves guides and coach-built meal plans.
type ContentController struct {
	Guides *services.GuideService
	Plans  *services.MealPlanService
}

func NewContentController(g *services.GuideService, p *services.MealPlanService) *ContentController {
	return &ContentController{Guides: g, Plans: p}
}

func (h *ContentController) ListGuides(c *gin.Context) {
	out, err := h.Guides.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ContentController) CreateGuide(c *gin.Context) {
	var in services.GuideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.Guides.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *ContentController) DeleteGuide(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.Guides.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentController) planFor(c *gin.Context, userID uint) {
	plan, err := h.Plans.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GET /meal-plan
func (h *ContentController) MyPlan(c *gin.Context) { h.planFor(c, userIDFromCtx(c)) }

// GET /admin/clients/:id/meal-plan
func (h *ContentController) ClientPlan(c *gin.Context) {
	if id, ok := uintParam(c, "id"); ok {
		h.planFor(c, id)
	}
}

// POST /admin/clients/:id/meal-plan
func (h *ContentController) AddPlanItem(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in services.MealPlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	it, err := h.Plans.Add(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// DELETE /admin/meal-plan/:itemId
func (h *ContentController) DeletePlanItem(c *gin.Context) {
	id, ok := uintParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.Plans.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
