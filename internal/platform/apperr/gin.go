package apperr

import (
	"log"

	"github.com/gin-gonic/gin"
)

// Body is the JSON error body written to clients.
type Body struct {
	Error string `json:"error"`
}

// Abort logs err with full detail and stops the gin chain with the mapped status and a generic body.
func Abort(c *gin.Context, err error) {
	kind := KindOf(err)
	log.Printf("http: %s %s: %s: %v", c.Request.Method, c.Request.URL.Path, kind, err)
	c.AbortWithStatusJSON(Status(err), Body{Error: PublicMessage(err)})
}
