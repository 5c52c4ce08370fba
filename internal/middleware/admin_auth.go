package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models/dto"
)

// AdminAuthMiddleware gates the administrative endpoints behind a static
// token, supplied either in the X-Admin-Token header or a token query
// parameter.
type AdminAuthMiddleware struct {
	token  string
	logger zerolog.Logger
}

// NewAdminAuthMiddleware creates a new AdminAuthMiddleware
func NewAdminAuthMiddleware(token string, logger zerolog.Logger) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{token: token, logger: logger}
}

// RequireAdmin aborts with 401 unless the request carries the admin token.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Token")
		if supplied == "" {
			supplied = c.Query("token")
		}

		if m.token == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(m.token)) != 1 {
			m.logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("clientIP", c.ClientIP()).
				Msg("Rejected admin request")
			c.AbortWithStatusJSON(401, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Admin token missing or invalid"),
			))
			return
		}

		c.Next()
	}
}
