package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxEmail       = "email"
	CtxRole        = "role"
	CtxPermissions = "permissions"
)

// Auth resolves the bearer token to an identity and injects it into context.
// Missing, malformed, tampered, and expired tokens are all rejected the same
// way: 401, no partial trust.
func Auth(issuer ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := issuer.ParseAccess(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxPermissions, claims.Permissions)

			return next(c)
		}
	}
}
