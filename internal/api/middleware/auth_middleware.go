package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumesentry/internal/auth"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验访问令牌并将 userID 与 userRole 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", claims.AccountID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// RequireRole 限制接口只允许指定角色访问。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get("userRole")
		if !ok {
			abortUnauthorized(c)
			return
		}
		if current, ok := value.(string); !ok || current != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
