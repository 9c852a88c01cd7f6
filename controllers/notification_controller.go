package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Templates *services.NotificationService
}

func NewNotificationController(s *services.NotificationService) *NotificationController {
	return &NotificationController{Templates: s}
}

func (h *NotificationController) List(c *gin.Context) {
	out, err := h.Templates.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationController) Create(c *gin.Context) {
	var in services.NotificationTemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Templates.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// PATCH /admin/notifications/:id
func (h *NotificationController) Toggle(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	t, err := h.Templates.Toggle(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *NotificationController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.Templates.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
