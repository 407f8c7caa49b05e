package interceptors

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerTimeHeader reports how long the server spent on the request, in microseconds.
const ServerTimeHeader = "x-server-time"

// ServerTime returns a handler that stamps x-server-time on the response just before headers are sent.
func ServerTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		w := &timedWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Writer = w
		c.Next()
		w.stamp()
	}
}

// timedWriter sets the elapsed-time header on the first write.
type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped || w.ResponseWriter.Written() {
		return
	}
	w.stamped = true
	w.Header().Set(ServerTimeHeader, strconv.FormatInt(time.Since(w.start).Microseconds(), 10))
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
