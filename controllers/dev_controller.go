package controllers

import (
	"net/http"

	"nutriportions/services"

	"github.com/gin-gonic/gin"
)

// DevController lets a coach send a one-off push to a client, to check
// that the client's devices are reachable.
type DevController struct {
	Push *services.PushService
}

func NewDevController(p *services.PushService) *DevController {
	return &DevController{Push: p}
}

type pushReq struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// POST /admin/clients/:id/push
func (d *DevController) PushTest(c *gin.Context) {
	uid, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req pushReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Title == "" {
		req.Title = "Test notification"
	}
	if req.Body == "" {
		req.Body = "This is only a test."
	}
	if req.Data == nil {
		req.Data = map[string]string{"type": "test"}
	}
	n, err := d.Push.PushToUser(c.Request.Context(), uid, req.Title, req.Body, req.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "endpoints": n})
}
