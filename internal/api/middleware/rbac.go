package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/core/domain"
)

// RBAC enforces the route's required role set. It runs after Auth, so the
// token is already valid here: a role mismatch is 403, never 401.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
