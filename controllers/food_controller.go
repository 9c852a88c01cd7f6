package controllers

import (
	"io"
	"net/http"
	"strconv"

	"nutriportions/models"
	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

type FoodBankController struct {
	Foods *services.FoodBankService
}

func NewFoodBankController(s *services.FoodBankService) *FoodBankController {
	return &FoodBankController{Foods: s}
}

// GET /food-bank?search=&category=&sub_category=&limit=
func (h *FoodBankController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.Foods.List(services.FoodFilter{
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		SubCategory: c.Query("sub_category"),
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FoodBankController) Categories(c *gin.Context) {
	out, err := h.Foods.Categories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FoodBankController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	f, err := h.Foods.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// GET /food-bank/:id/preview?measure=grams&quantity=150
func (h *FoodBankController) Preview(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	q, err := strconv.ParseFloat(c.DefaultQuery("quantity", "1"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
		return
	}
	out, err := h.Foods.Preview(id, c.Query("measure"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ---------- admin ----------

func (h *FoodBankController) Create(c *gin.Context) {
	var f models.FoodBankItem
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Foods.Create(&f); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FoodBankController) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var f models.FoodBankItem
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Foods.Update(id, &f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Import accepts a CSV either as multipart field "file" or as the raw body.
func (h *FoodBankController) Import(c *gin.Context) {
	var r io.Reader = c.Request.Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			badRequest(c, err)
			return
		}
		defer f.Close()
		r = f
	}
	n, err := h.Foods.ImportCSV(r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}
