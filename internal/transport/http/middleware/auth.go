package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/infra/security"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// Context keys set by RequireAuth.
const (
	UserIDKey = "user_id"
	ClaimsKey = "claims"
)

// ErrorResponse matches the handlers error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, msg string) ErrorResponse {
	return ErrorResponse{
		Error:     msg,
		RequestID: requestIDFromContext(c.Request.Context()),
	}
}

// RequireAuth validates the Authorization header and stores the claims
// on the request context. Every token failure yields the same generic
// 401 body.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing or malformed authorization header"))
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or expired token"))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RequirePermission gates the route on one permission code. It must
// run after RequireAuth.
func RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !usecase.Authorize(claims, code) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "permission denied"))
			return
		}

		c.Next()
	}
}

// GetClaims returns the verified claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *security.AccessClaims {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*security.AccessClaims)
	return claims
}

// GetUserID returns the authenticated user id, or the empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
