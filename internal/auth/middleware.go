package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginPath is where unauthenticated admin navigation is sent.
const LoginPath = "/admin/login"

// SessionGuard gates admin page navigation. Any verification failure becomes
// a redirect to the login page; the reason stays in the server log. This is a
// UI-layer gate only, so API handlers carry their own check (RequireAdmin).
func SessionGuard(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == LoginPath {
			c.Next()
			return
		}
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		claims, err := codec.Verify(token)
		if err != nil {
			log.Printf("[auth] session rejected path=%s reason=%v", c.Request.URL.Path, err)
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Next()
	}
}

// RequireAdmin wraps a privileged API handler with its own verification,
// independent of SessionGuard. API clients get a structured 401 instead of a
// redirect. A misconfigured route table must not silently expose h.
func RequireAdmin(codec *Codec, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := codec.Verify(token)
		if err != nil {
			log.Printf("[auth] api call rejected path=%s reason=%v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("admin_id", claims.AdminID)
		h(c)
	}
}
