package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/middleware"
	"github.com/mkrylov/accountd/internal/service"
)

type AuthHandler struct {
	auth  *service.AuthService
	reset *service.PasswordResetService
}

func NewAuthHandler(auth *service.AuthService, reset *service.PasswordResetService) *AuthHandler {
	return &AuthHandler{auth: auth, reset: reset}
}

type registrationRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *AuthHandler) Registration(c *gin.Context) {
	var req registrationRequest
	_ = c.ShouldBindJSON(&req)

	errs := newFieldErrors()
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	} else if len(req.Name) > 255 {
		errs.add("name", "The name must not be greater than 255 characters.")
	}
	validateEmailField(errs, req.Email)
	validatePasswordField(errs, req.Password, req.PasswordConfirmation)
	if !errs.empty() {
		errs.respond(c)
		return
	}

	if err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		// The cause is never surfaced to the caller on this path.
		logutil.GetLogger(c.Request.Context()).Error("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		return
	}
	c.Status(http.StatusCreated)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID := c.Param("id")
	emailHash := c.Param("hash")
	if err := h.auth.VerifyEmail(c.Request.Context(), userID, emailHash); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	email := queryOrJSON(c, "email")
	errs := newFieldErrors()
	validateEmailField(errs, email)
	if !errs.empty() {
		errs.respond(c)
		return
	}
	if err := h.auth.ResendVerification(c.Request.Context(), email); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)

	errs := newFieldErrors()
	if req.Email == "" {
		errs.add("email", "The email field is required.")
	}
	if req.Password == "" {
		errs.add("password", "The password field is required.")
	}
	if !errs.empty() {
		errs.respond(c)
		return
	}

	accessToken, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), user); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	_ = c.ShouldBindJSON(&req)

	errs := newFieldErrors()
	validateEmailField(errs, req.Email)
	if !errs.empty() {
		errs.respond(c)
		return
	}
	if err := h.reset.SendResetLink(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type resetPasswordRequest struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	_ = c.ShouldBindJSON(&req)

	errs := newFieldErrors()
	validateEmailField(errs, req.Email)
	if req.Token == "" {
		errs.add("token", "The token field is required.")
	}
	validatePasswordField(errs, req.Password, req.PasswordConfirmation)
	if !errs.empty() {
		errs.respond(c)
		return
	}
	if err := h.reset.Reset(c.Request.Context(), req.Email, req.Password, req.Token); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func validateEmailField(errs *fieldErrors, email string) {
	switch {
	case email == "":
		errs.add("email", "The email field is required.")
	case len(email) > 255:
		errs.add("email", "The email must not be greater than 255 characters.")
	case !validEmail(email):
		errs.add("email", "The email must be a valid email address.")
	}
}

func validatePasswordField(errs *fieldErrors, password, confirmation string) {
	switch {
	case password == "":
		errs.add("password", "The password field is required.")
	case len(password) < 8:
		errs.add("password", "The password must be at least 8 characters.")
	case password != confirmation:
		errs.add("password", "The password confirmation does not match.")
	}
}
