package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkrylov/accountd/internal/middleware"
	"github.com/mkrylov/accountd/internal/pkg/signer"
)

type RouterDeps struct {
	Auth              *AuthHandler
	Profile           *ProfileHandler
	Signer            *signer.Signer
	Authenticator     middleware.Authenticator
	ThrottlePerMinute int
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", Home)

	requireAuth := middleware.TokenAuth(deps.Authenticator)
	api.GET("/profile", requireAuth, deps.Profile.Show)

	auth := api.Group("/auth")
	auth.POST("/registration", deps.Auth.Registration)
	auth.POST("/reset-password", deps.Auth.ResetPassword)

	throttled := auth.Group("")
	throttled.Use(middleware.Throttle(deps.ThrottlePerMinute, time.Minute))
	throttled.GET("/verify-email/:id/:hash", middleware.SignedLink(deps.Signer), deps.Auth.VerifyEmail)
	throttled.GET("/resend-email-verification", deps.Auth.ResendVerification)
	throttled.POST("/resend-email-verification", deps.Auth.ResendVerification)
	throttled.POST("/login", deps.Auth.Login)
	throttled.POST("/logout", requireAuth, deps.Auth.Logout)
	throttled.POST("/forgot-password", deps.Auth.ForgotPassword)
}
