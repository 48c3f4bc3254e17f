package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/pkg/signer"
)

// SignedLink rejects requests whose expires/signature query parameters do
// not validate against the request path. Runs before the handler, so link
// validity is settled cryptographically before any account state is read.
func SignedLink(s *signer.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Verify(c.Request.URL.Path, c.Request.URL.Query()) {
			logutil.GetLogger(c.Request.Context()).Warn("signed link rejected",
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid signature."})
			return
		}
		c.Next()
	}
}
