package middleware

import "github.com/gin-gonic/gin"

// userIDKey stores the authenticated user's ID in the Gin context. A custom
// type keeps it from colliding with other packages' context values.
const userIDKey = contextKey("userID")

// GetUserIDFromContext retrieves the authenticated user ID set by the auth
// middleware. The second return is false when no identity is present.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok
	}
	// Fall back to the request context for callers outside the Gin chain.
	if v := c.Request.Context().Value(userIDKey); v != nil {
		userID, ok := v.(string)
		return userID, ok
	}
	return "", false
}
