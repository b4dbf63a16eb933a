package ui

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profitpulse/internal/errors"
)

const sessionCookie = "pp_session"

// requireAuth sends requests without a valid session cookie to the login page.
// API requests get a 401 instead. An empty password disables the check.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}

		cookie, err := c.Cookie(sessionCookie)
		if err == nil && subtle.ConstantTimeCompare([]byte(cookie), []byte(s.token)) == 1 {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			err := errors.Unauthorized("authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": err.Code})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// checkPassword compares a submitted password with the configured one in constant time
func (s *Server) checkPassword(password string) bool {
	if s.token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken(password)), []byte(s.token)) == 1
}
