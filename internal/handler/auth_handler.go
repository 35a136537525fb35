package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/middleware"
	"invoicedesk/internal/service"
)

// AuthHandler handles phone/OTP sign-in endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTP handles POST /api/v1/auth/otp
// @Summary Request a sign-in code
// @Description Send a one-time code to the given phone number
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RequestOTPInput true "Phone number"
// @Success 200 {object} APIResponse "Code sent"
// @Failure 400 {object} APIResponse "Invalid phone number"
// @Failure 403 {object} APIResponse "Phone number not allowed"
// @Router /auth/otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var input service.RequestOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.authService.RequestOTP(c.Request.Context(), input.Phone); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "otp sent"})
}

// VerifyOTP handles POST /api/v1/auth/verify
// @Summary Verify a sign-in code
// @Description Exchange a phone number and one-time code for a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.VerifyOTPInput true "Phone number and code"
// @Success 200 {object} APIResponse{data=service.TokenPair} "Signed in"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Invalid or expired code"
// @Failure 429 {object} APIResponse "Too many attempts"
// @Router /auth/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var input service.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.VerifyOTP(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh access token
// @Description Issue a new token pair from a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RefreshInput true "Refresh token"
// @Success 200 {object} APIResponse{data=service.TokenPair} "New token pair"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// Session handles GET /api/v1/auth/session
// @Summary Current session
// @Description Return the phone number and expiry of the current session
// @Tags auth
// @Produce json
// @Success 200 {object} APIResponse{data=domain.Session} "Session details"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, session)
}
