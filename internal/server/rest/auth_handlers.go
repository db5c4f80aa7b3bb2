package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgRegistered     = "Registration successful! Please check your inbox—we've sent you a verification email to activate your account."
	msgVerified       = "Your email has been successfully verified. You can now log in."
	msgLoggedIn       = "Login successful!"
	msgResetRequested = "If the email is valid, you will receive a reset link shortly."
	msgPasswordReset  = "Your password has been reset successfully. You can now log in."

	msgProvideCredentials  = "Please provide email and password"
	msgProvideVerification = "Please provide email and verification token"
)

type authHandler struct {
	svc     AuthService
	cookies *auth.Cookies
}

type registerRequest struct {
	Name            string `json:"name" binding:"required,min=3,max=30"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type verifyEmailRequest struct {
	Email             string `json:"email" binding:"required"`
	VerificationToken string `json:"verificationToken" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (h *authHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err, msgInvalidBody))
		return
	}

	_, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: msgRegistered})
}

func (h *authHandler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.BadRequest(msgProvideVerification))
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), normalizeEmail(req.Email), req.VerificationToken); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": msgVerified})
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.BadRequest(msgProvideCredentials))
		return
	}

	id, err := h.svc.Login(c.Request.Context(), services.LoginInput{
		Email:     normalizeEmail(req.Email),
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.cookies.Attach(c.Writer, id.Tokens.AccessToken, id.Tokens.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": id.User, "message": msgLoggedIn})
}

func (h *authHandler) logout(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		abortWithError(c, common.Unauthenticated(services.MsgAuthenticationInvalid))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), p.UserID); err != nil {
		abortWithError(c, err)
		return
	}
	h.cookies.Clear(c.Writer)
	c.Status(http.StatusNoContent)
}

func (h *authHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.BadRequest(services.MsgProvideEmail))
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), normalizeEmail(req.Email)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgResetRequested})
}

func (h *authHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, resetBindError(err))
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), services.ResetPasswordInput{
		Email:    normalizeEmail(req.Email),
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgPasswordReset})
}

// resetBindError keeps the generic message for missing fields and reports
// password rule violations like registration does.
func resetBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.BadRequest(services.MsgProvideAllValues)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return common.BadRequest(services.MsgProvideAllValues)
		}
	}
	return verrs
}
