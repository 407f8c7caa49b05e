package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is the /healthz body.
type Status struct {
	Status string `json:"status"`
}

// Index handles GET /.
func Index(c *gin.Context) {
	c.String(http.StatusOK, "index handler")
}

// Healthz handles GET /healthz: 200 when every check passes, 503 otherwise.
func (h *Checker) Healthz(c *gin.Context) {
	if err := h.Check(c.Request.Context()); err != nil {
		log.Printf("health: not serving: %v", err)
		c.JSON(http.StatusServiceUnavailable, Status{Status: "NOT_SERVING"})
		return
	}
	c.JSON(http.StatusOK, Status{Status: "SERVING"})
}
