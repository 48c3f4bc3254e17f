package handler

import (
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/middleware"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
)

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsDomain(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case err == appErr.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
	default:
		requestID, _ := c.Get(middleware.ContextRequestIDKey)
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// fieldErrors collects per-field validation messages.
type fieldErrors struct {
	fields map[string][]string
}

func newFieldErrors() *fieldErrors {
	return &fieldErrors{fields: map[string][]string{}}
}

func (f *fieldErrors) add(field, message string) {
	f.fields[field] = append(f.fields[field], message)
}

func (f *fieldErrors) empty() bool {
	return len(f.fields) == 0
}

func (f *fieldErrors) respond(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "The given data was invalid.",
		"errors":  f.fields,
	})
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// queryOrJSON reads a parameter from the query string first, then from a
// JSON body. Used by endpoints registered under both GET and POST.
func queryOrJSON(c *gin.Context, key string) string {
	if value := c.Query(key); value != "" {
		return value
	}
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err == nil {
		if value, ok := body[key]; ok {
			return value
		}
	}
	return ""
}
