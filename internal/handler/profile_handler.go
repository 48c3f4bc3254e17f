package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkrylov/accountd/internal/middleware"
)

const apiVersion = "1.0"

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Show returns the public view of the authenticated account.
func (h *ProfileHandler) Show(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": apiVersion})
}
