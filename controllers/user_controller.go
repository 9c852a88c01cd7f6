package controllers

import (
	"net/http"

	"nutriportions/models"
	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Profiles *services.ProfileService
}

func NewProfileController(p *services.ProfileService) *ProfileController {
	return &ProfileController{Profiles: p}
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	v, err := pc.Profiles.View(userIDFromCtx(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.Update(c.Request.Context(), userIDFromCtx(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ---------- admin ----------

func (pc *ProfileController) ListClients(c *gin.Context) {
	out, err := pc.Profiles.ListClients(c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (pc *ProfileController) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *ProfileController) UpdateGoals(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in services.GoalsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.UpdateGoals(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProfileController) ApplyTemplate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		TemplateID uint `json:"template_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.ApplyTemplate(id, body.TemplateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProfileController) ListTemplates(c *gin.Context) {
	out, err := pc.Profiles.ListTemplates()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (pc *ProfileController) CreateTemplate(c *gin.Context) {
	var t models.TargetTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	if err := pc.Profiles.CreateTemplate(&t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}
