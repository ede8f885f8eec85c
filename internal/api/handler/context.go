package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/api/middleware"
	"github.com/servicecenter/service-center-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call: both claims must be present, their
// absence means the middleware did not run or the token carried no identity.
func ctxIdentity(c echo.Context) (email string, role domain.Role, err error) {
	email, _ = c.Get(middleware.CtxEmail).(string)
	role, _ = c.Get(middleware.CtxRole).(domain.Role)
	if email == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return email, role, nil
}
