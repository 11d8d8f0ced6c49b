package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/auth"
	"github.com/pairline/pairline-server/internal/core"
)

// ContextKeyUser is the gin context key holding the resolved *core.User.
const ContextKeyUser = "user"

// AuthMiddleware resolves the bearer token and stores the user in context.
// Authentication failures are terminal for the request.
func AuthMiddleware(resolver *auth.Resolver, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		user, err := resolver.Resolve(token)
		if err != nil {
			if errors.Is(err, auth.ErrMissingCredential) {
				logger.Debug().Msg("missing credential")
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing credential"})
			} else {
				logger.Debug().Msg("invalid credential")
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credential"})
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// userFromContext returns the authenticated user placed by AuthMiddleware.
func userFromContext(c *gin.Context) (*core.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*core.User)
	return user, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
