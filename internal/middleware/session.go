package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/response"
)

// ClaimsKey is the gin context key holding the authenticated session claims.
const ClaimsKey = "session_claims"

type tokenValidator interface {
	ValidateToken(token string) (*models.SessionClaims, error)
	CookieName() string
}

// Session gates API routes behind a valid session. The token is read from
// the session cookie or, failing that, a Bearer authorization header.
func Session(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, auth.CookieName())
		if token == "" {
			response.Error(c, apperrors.Clone(apperrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RedirectToLogin sends unauthenticated page requests to the login screen
// instead of returning a JSON error.
func RedirectToLogin(auth tokenValidator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, auth.CookieName())
		if token != "" {
			if _, err := auth.ValidateToken(token); err == nil {
				c.Next()
				return
			}
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

// ClaimsFromContext returns the session claims set by Session, if any.
func ClaimsFromContext(c *gin.Context) (*models.SessionClaims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.SessionClaims)
	return claims, ok
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
