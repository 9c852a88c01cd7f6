package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type DailyItemController struct {
	Items *services.DailyItemService
}

func NewDailyItemController(s *services.DailyItemService) *DailyItemController {
	return &DailyItemController{Items: s}
}

// POST /daily/items
func (h *DailyItemController) AddFromFoodBank(c *gin.Context) {
	var req services.AddFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	it, err := h.Items.AddFromFoodBank(userIDFromCtx(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

type analyzedItemsReq struct {
	Date         string                       `json:"date"`
	MealCategory string                       `json:"meal_category" binding:"required"`
	Items        []services.AnalyzedItemInput `json:"items" binding:"required"`
}

// POST /daily/items/analysis
func (h *DailyItemController) AddAnalyzed(c *gin.Context) {
	var req analyzedItemsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Items.AddAnalyzedItems(userIDFromCtx(c), req.Date, req.MealCategory, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

type mealPlanItemReq struct {
	Date       string `json:"date"`
	PlanItemID uint   `json:"plan_item_id" binding:"required"`
}

// POST /daily/items/meal-plan
func (h *DailyItemController) AddFromMealPlan(c *gin.Context) {
	var req mealPlanItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	it, err := h.Items.AddFromMealPlan(userIDFromCtx(c), req.Date, req.PlanItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

type quantityReq struct {
	Quantity float64 `json:"quantity" binding:"required"`
}

// PATCH /daily/items/:id
func (h *DailyItemController) UpdateQuantity(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	it, err := h.Items.UpdateQuantity(userIDFromCtx(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// DELETE /daily/items/:id
func (h *DailyItemController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.Items.Delete(userIDFromCtx(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
