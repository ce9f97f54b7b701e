package middleware

import (
	"net/http"

	"github.com/GoLaunchpad/launchgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		// The transfer hook is a pure authorization check; it stays
		// available so the host can keep moving assets while settlements
		// are frozen.
		if c.FullPath() == "/v1/hooks/transfer" {
			c.Next()
			return
		}

		method := c.Request.Method
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		default:
			c.Error(apperrors.New(apperrors.ErrReadOnly, "read-only mode enabled", nil))
			c.Abort()
			return
		}
	}
}
