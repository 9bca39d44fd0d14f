package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKey represents keys for context values.
type ContextKey string

const (
	// UsernameContextKey holds the authenticated username.
	UsernameContextKey ContextKey = "username"
)

// RequireAuth creates authentication middleware that validates bearer
// tokens and stores the username on the request context.
func RequireAuth(tokenService *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := tokenService.ValidateToken(tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(string(UsernameContextKey), claims.Username)

			return next(c)
		}
	}
}

// UsernameFromContext returns the authenticated username, or "" when
// the request was not authenticated.
func UsernameFromContext(c echo.Context) string {
	if username, ok := c.Get(string(UsernameContextKey)).(string); ok {
		return username
	}
	return ""
}
