package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags every request with a correlation id. A client-supplied
// X-Request-ID is kept; otherwise a REQ-XXXXXXXX id is generated. The id is
// echoed in the response header and used as support_code in error bodies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = newRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "REQ-" + strings.ToUpper(raw[:8])
}
