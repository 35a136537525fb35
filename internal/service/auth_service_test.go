package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
	"invoicedesk/internal/service"
	"invoicedesk/mocks"
)

const testPhone = "9844533035"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "invoicedesk-test",
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AllowedPhones: []string{testPhone},
		StaticOTP:     "1234",
		OTPTTL:        5 * time.Minute,
		MaxAttempts:   3,
	}
}

func hashCode(code string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	return string(hash)
}

func newAuthService(store *mocks.MockOTPStore) service.AuthService {
	return service.NewAuthService(store, testJWTConfig(), testAuthConfig(), zap.NewNop())
}

func TestAuthService_RequestOTP_StoresHashedStaticCode(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Save", mock.Anything, testPhone, mock.MatchedBy(func(ch *port.OTPChallenge) bool {
		return ch.Attempts == 0 && bcrypt.CompareHashAndPassword([]byte(ch.CodeHash), []byte("1234")) == nil
	}), 5*time.Minute).Return(nil)

	err := svc.RequestOTP(context.Background(), " "+testPhone+" ")
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestAuthService_RequestOTP_RandomCodeWhenNoStatic(t *testing.T) {
	store := new(mocks.MockOTPStore)
	cfg := testAuthConfig()
	cfg.StaticOTP = ""
	svc := service.NewAuthService(store, testJWTConfig(), cfg, zap.NewNop())

	store.On("Save", mock.Anything, testPhone, mock.AnythingOfType("*port.OTPChallenge"), 5*time.Minute).Return(nil)

	require.NoError(t, svc.RequestOTP(context.Background(), testPhone))
	store.AssertExpectations(t)
}

func TestAuthService_RequestOTP_PhoneChecks(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  error
	}{
		{"too short", "98445", domain.ErrInvalidPhone},
		{"letters", "98445330ab", domain.ErrInvalidPhone},
		{"eleven digits", "98445330351", domain.ErrInvalidPhone},
		{"not on allowlist", "9000000000", domain.ErrPhoneNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockOTPStore)
			svc := newAuthService(store)

			err := svc.RequestOTP(context.Background(), tt.phone)
			assert.ErrorIs(t, err, tt.want)
			store.AssertNotCalled(t, "Save")
		})
	}
}

func TestAuthService_VerifyOTP_Success(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(&port.OTPChallenge{CodeHash: hashCode("1234")}, nil)
	store.On("Delete", mock.Anything, testPhone).Return(nil)

	pair, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testPhone, claims.Phone)
	assert.Equal(t, testPhone, claims.Session().Phone)
	assert.False(t, claims.LoginTime.IsZero())

	store.AssertExpectations(t)
}

func TestAuthService_VerifyOTP_IncompleteCode(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	for _, code := range []string{"", "12", "12345", "12a4"} {
		_, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: code})
		assert.ErrorIs(t, err, domain.ErrIncompleteOTP, code)
	}
	store.AssertNotCalled(t, "Get")
}

func TestAuthService_VerifyOTP_WrongCodeCountsAttempt(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(&port.OTPChallenge{CodeHash: hashCode("1234"), Attempts: 1}, nil)
	store.On("IncrementAttempts", mock.Anything, testPhone).Return(2, nil)

	_, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "4321"})
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete")
}

func TestAuthService_VerifyOTP_AttemptsExceeded(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(&port.OTPChallenge{CodeHash: hashCode("1234"), Attempts: 3}, nil)

	_, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	assert.ErrorIs(t, err, domain.ErrOTPAttemptsExceeded)
}

func TestAuthService_VerifyOTP_Expired(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(nil, domain.ErrOTPExpired)

	_, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestAuthService_VerifyOTP_StoreError(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(nil, errors.New("redis down"))

	_, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestAuthService_RefreshToken(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)

	store.On("Get", mock.Anything, testPhone).Return(&port.OTPChallenge{CodeHash: hashCode("1234")}, nil)
	store.On("Delete", mock.Anything, testPhone).Return(nil)
	pair, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted for refresh, and vice versa.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	store := new(mocks.MockOTPStore)
	svc := newAuthService(store)
	store.On("Get", mock.Anything, testPhone).Return(&port.OTPChallenge{CodeHash: hashCode("1234")}, nil)
	store.On("Delete", mock.Anything, testPhone).Return(nil)
	pair, err := svc.VerifyOTP(context.Background(), service.VerifyOTPInput{Phone: testPhone, OTP: "1234"})
	require.NoError(t, err)

	jwtCfg := testJWTConfig()
	jwtCfg.Secret = "another-secret"
	other := service.NewAuthService(store, jwtCfg, testAuthConfig(), zap.NewNop())
	_, err = other.ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}
