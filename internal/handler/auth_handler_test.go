package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/middleware"
	"invoicedesk/internal/service"
	"invoicedesk/mocks"
)

const testPhone = "9844533035"

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// signedIn sets the session values AuthMiddleware would set.
func signedIn(c *gin.Context) {
	c.Set(middleware.ContextKeyPhone, testPhone)
	c.Set(middleware.ContextKeySession, domain.Session{Phone: testPhone, LoginTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)})
}

func TestAuthHandler_RequestOTP_Success(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)
	mockAuth.On("RequestOTP", mock.Anything, testPhone).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/otp", map[string]string{"phone": testPhone})

	h.RequestOTP(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_RequestOTP_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid phone", domain.ErrInvalidPhone, http.StatusBadRequest, "INVALID_PHONE"},
		{"not allowed", domain.ErrPhoneNotAllowed, http.StatusForbidden, "PHONE_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := new(mocks.MockAuthService)
			h := handler.NewAuthHandler(mockAuth)
			mockAuth.On("RequestOTP", mock.Anything, "123").Return(tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/otp", map[string]string{"phone": "123"})

			h.RequestOTP(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestAuthHandler_RequestOTP_MissingPhone(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/otp", map[string]string{})

	h.RequestOTP(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuth.AssertNotCalled(t, "RequestOTP")
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	pair := &service.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: time.Now().Add(time.Hour)}
	mockAuth.On("VerifyOTP", mock.Anything, service.VerifyOTPInput{Phone: testPhone, OTP: "1234"}).Return(pair, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"phone": testPhone, "otp": "1234"})

	h.VerifyOTP(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "access", data["access_token"])
}

func TestAuthHandler_VerifyOTP_Invalid(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)
	mockAuth.On("VerifyOTP", mock.Anything, mock.AnythingOfType("service.VerifyOTPInput")).Return(nil, domain.ErrInvalidOTP)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"phone": testPhone, "otp": "9999"})

	h.VerifyOTP(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_OTP", decode(t, w).Error.Code)
}

func TestAuthHandler_RefreshToken_Unauthorized(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)
	mockAuth.On("RefreshToken", mock.Anything, "bad").Return(nil, domain.ErrUnauthorized)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": "bad"})

	h.RefreshToken(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Session(t *testing.T) {
	h := handler.NewAuthHandler(new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/session", http.NoBody)
	signedIn(c)

	h.Session(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, testPhone, data["phone"])
}
