package controllers

import (
	"net/http"

	"nutriportions/services"
	"nutriportions/utils"

	"github.com/gin-gonic/gin"
)

type PhotoController struct {
	Analysis *services.PhotoAnalysisService
	Images   services.ImageStore
}

func NewPhotoController(a *services.PhotoAnalysisService, images services.ImageStore) *PhotoController {
	return &PhotoController{Analysis: a, Images: images}
}

type imageReq struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// POST /analysis/photo
func (h *PhotoController) Analyze(c *gin.Context) {
	var req imageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if !tooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is required"})
		}
		return
	}
	res, err := h.Analysis.Analyze(c.Request.Context(), userIDFromCtx(c), req.ImageBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type uploadReq struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	Folder      string `json:"folder"`
}

// POST /admin/uploads
func (h *PhotoController) Upload(c *gin.Context) {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}
	var req uploadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if !tooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		}
		return
	}
	img, err := utils.DecodeDataURI(req.ImageBase64)
	if err != nil {
		badRequest(c, err)
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = "general"
	}
	url, err := h.Images.UploadImage(c.Request.Context(), img, "uploads/"+folder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
