package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionUserKey is the session field holding the signed-in user id.
	SessionUserKey = "user_id"
	// ViewerKey is the gin context key LoadViewer fills.
	ViewerKey = "viewer_id"
)

// LoadViewer copies the session's user id onto the request context. Anonymous
// requests carry an empty viewer.
func LoadViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserKey).(string); ok && userID != "" {
			c.Set(ViewerKey, userID)
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a signed-in viewer.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "sign in required",
			})
			return
		}
		c.Next()
	}
}

func ViewerID(c *gin.Context) string {
	return c.GetString(ViewerKey)
}
