package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/internal/application"
	"github.com/oksasatya/project-tracker-api/internal/interface/http/dto"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
	"github.com/oksasatya/project-tracker-api/pkg/response"
	"github.com/oksasatya/project-tracker-api/pkg/validation"
)

const (
	msgInvalidPayload = "invalid payload"

	msgRegistered    = "User registered successfully. Verification email sent"
	msgLoggedIn      = "Login successful"
	msgVerified      = "Email verified successfully"
	msgResetSent     = "Password reset email sent successfully"
	msgPasswordReset = "Password reset successfully"
	msgLoggedOut     = "Logged out successfully"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

// bind decodes the JSON body into req and writes a 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error[any](c, http.StatusBadRequest, msgInvalidPayload, validation.ToDetails(err))
		return false
	}
	return true
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}
	_, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, nil, msgRegistered, nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, dto.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      dto.NewUserResponse(res.User),
	}, msgLoggedIn, nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msgVerified, nil)
}

func (h *AuthHandler) ResetPasswordRequest(c *gin.Context) {
	var req dto.ResetPasswordRequestRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msgResetSent, nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bind(c, &req) {
		return
	}
	err := h.Svc.ResetPassword(c.Request.Context(), application.ResetPasswordInput{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msgPasswordReset, nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString("userID")); err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, msgLoggedOut, nil)
}
