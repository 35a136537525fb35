package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/service"
)

const (
	ContextKeyPhone   = "phone"
	ContextKeySession = "session"
	ContextKeyClaims  = "claims"
)

// AuthMiddleware returns Gin middleware that validates access tokens and
// injects the signed-in phone number and session.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyPhone, claims.Phone)
		c.Set(ContextKeySession, claims.Session())
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetPhone extracts the signed-in phone number from the Gin context.
func GetPhone(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyPhone)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	phone, ok := val.(string)
	if !ok || phone == "" {
		return "", domain.ErrUnauthorized
	}
	return phone, nil
}

// GetSession extracts the session from the Gin context.
func GetSession(c *gin.Context) (domain.Session, error) {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return val.(domain.Session), nil
}
