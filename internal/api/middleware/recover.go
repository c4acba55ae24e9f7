package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/pkg/response"
)

// Recover turns a panic into a sanitized 500.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.ServerError(c, "")
				c.Abort()
			}
		}()
		c.Next()
	}
}
