package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/port"
)

const (
	phoneDigits = 10
	otpDigits   = 4
)

// Claims represents the JWT claims of a signed-in phone number.
type Claims struct {
	jwt.RegisteredClaims
	Phone     string    `json:"phone"`
	LoginTime time.Time `json:"login_time"`
}

// Session returns the session described by the claims.
func (c *Claims) Session() domain.Session {
	return domain.Session{Phone: c.Phone, LoginTime: c.LoginTime}
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RequestOTPInput is the DTO for OTP requests.
type RequestOTPInput struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyOTPInput is the DTO for OTP verification.
type VerifyOTPInput struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the phone/OTP sign-in contract.
type AuthService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	otps    port.OTPStore
	jwtCfg  config.JWTConfig
	authCfg config.AuthConfig
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(otps port.OTPStore, jwtCfg config.JWTConfig, authCfg config.AuthConfig, log *zap.Logger) AuthService {
	return &authService{
		otps:    otps,
		jwtCfg:  jwtCfg,
		authCfg: authCfg,
		log:     log,
		now:     time.Now,
	}
}

func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if err := s.checkPhone(phone); err != nil {
		return err
	}

	code, err := s.issueCode()
	if err != nil {
		return fmt.Errorf("auth.RequestOTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth.RequestOTP hashing: %w", err)
	}
	if err := s.otps.Save(ctx, phone, &port.OTPChallenge{CodeHash: string(hash)}, s.authCfg.OTPTTL); err != nil {
		return fmt.Errorf("auth.RequestOTP: %w", err)
	}

	s.log.Info("otp issued", zap.String("phone", logger.MaskPhone(phone)))
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, input VerifyOTPInput) (*TokenPair, error) {
	phone := strings.TrimSpace(input.Phone)
	if err := s.checkPhone(phone); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.OTP)
	if !isDigits(code, otpDigits) {
		return nil, domain.ErrIncompleteOTP
	}

	challenge, err := s.otps.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrOTPExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("auth.VerifyOTP: %w", err)
	}
	if s.authCfg.MaxAttempts > 0 && challenge.Attempts >= s.authCfg.MaxAttempts {
		return nil, domain.ErrOTPAttemptsExceeded
	}

	if err := bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)); err != nil {
		if _, incErr := s.otps.IncrementAttempts(ctx, phone); incErr != nil {
			s.log.Warn("failed to record otp attempt", zap.Error(incErr))
		}
		return nil, domain.ErrInvalidOTP
	}

	if err := s.otps.Delete(ctx, phone); err != nil {
		s.log.Warn("failed to clear otp challenge", zap.Error(err))
	}
	s.log.Info("signed in", zap.String("phone", logger.MaskPhone(phone)))
	return s.generateTokenPair(phone, s.now())
}

func (s *authService) RefreshToken(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, "refresh")
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !s.isAllowed(claims.Phone) {
		return nil, domain.ErrUnauthorized
	}
	return s.generateTokenPair(claims.Phone, claims.LoginTime)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, "access")
}

func (s *authService) checkPhone(phone string) error {
	if !isDigits(phone, phoneDigits) {
		return domain.ErrInvalidPhone
	}
	if !s.isAllowed(phone) {
		return domain.ErrPhoneNotAllowed
	}
	return nil
}

func (s *authService) isAllowed(phone string) bool {
	for _, p := range s.authCfg.AllowedPhones {
		if p == phone {
			return true
		}
	}
	return false
}

// issueCode returns the configured static code, or a random one when none is set.
func (s *authService) issueCode() (string, error) {
	if s.authCfg.StaticOTP != "" {
		return s.authCfg.StaticOTP, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *authService) generateTokenPair(phone string, loginTime time.Time) (*TokenPair, error) {
	now := s.now()
	accessExpiry := now.Add(s.jwtCfg.AccessTokenExpiry)

	accessToken, err := s.signToken(phone, loginTime, now, accessExpiry, "access")
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.signToken(phone, loginTime, now, now.Add(s.jwtCfg.RefreshTokenExpiry), "refresh")
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) signToken(phone string, loginTime, now, expiry time.Time, audience string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		Phone:     phone,
		LoginTime: loginTime,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
