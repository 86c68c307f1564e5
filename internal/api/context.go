package api

import "github.com/gin-gonic/gin"

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func roleFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}
