package middleware

import (
	"net/http"
	"strings"

	"cctv-surveillance-reports/be/services"

	"github.com/gin-gonic/gin"
)

const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthMiddleware requires a valid session token and stores its claims on the
// context. Browsers cannot set headers on a websocket handshake, so upgrade
// requests may carry the token as ?token= or as the subprotocol
// "authorization.bearer.<token>".
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization required"})
			return
		}

		identity, err := services.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.Set(ContextUsername, identity.Username)
		c.Set(ContextRole, identity.Role)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return ""
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	for _, proto := range strings.Split(c.GetHeader("Sec-WebSocket-Protocol"), ",") {
		proto = strings.TrimSpace(proto)
		if rest, ok := strings.CutPrefix(proto, "authorization.bearer."); ok {
			return rest
		}
	}
	return ""
}
