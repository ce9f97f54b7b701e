package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/config"
	"github.com/GoLaunchpad/launchgate/internal/model"
)

const (
	// HeaderCallerID carries the host-verified principal identity. The host
	// in front of this service owns signature verification; by the time a
	// request lands here the header is trusted.
	HeaderCallerID = "X-Caller-Id"

	HeaderGatewayKey = "X-Gateway-Key"
	ContextCallerKey = "caller"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg != nil && cfg.Auth.RequireAPIKey {
			if c.GetHeader(HeaderGatewayKey) != cfg.Auth.APIKey {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
				c.Abort()
				return
			}
		}

		raw := c.GetHeader(HeaderCallerID)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			c.Abort()
			return
		}
		caller, err := model.ParseIdentity(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "malformed caller identity"})
			c.Abort()
			return
		}

		// 将调用方主体存入上下文
		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// Caller returns the authenticated principal set by AuthMiddleware.
func Caller(c *gin.Context) (model.Identity, bool) {
	val, exists := c.Get(ContextCallerKey)
	if !exists {
		return model.Identity{}, false
	}
	caller, ok := val.(model.Identity)
	return caller, ok
}
