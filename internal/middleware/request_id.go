package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-Id"

// ContextRequestIDKey is the gin context key carrying the request id.
const ContextRequestIDKey = "request_id"

// RequestID tags every request with an id, propagating the caller's own
// X-Request-Id when one is supplied and minting one otherwise. The id is
// echoed back on the response so failed lifecycle calls can be correlated
// with server logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			buf := make([]byte, 16)
			_, _ = rand.Read(buf)
			id = hex.EncodeToString(buf)
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(ContextRequestIDKey, id)
		c.Next()
	}
}
