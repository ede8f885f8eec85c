package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// IdentityHandler serves the resolved identity of the current request. The
// business CRUD services consume this same context instead of hitting the
// credential store themselves.
type IdentityHandler struct {
	identity ports.IdentityService
}

func NewIdentityHandler(identity ports.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identity}
}

type profileResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Me returns the account behind the presented access token.
//
// @Summary      Current identity
// @Tags         identity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	email, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.identity.GetAccount(c.Request().Context(), email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		ID:          account.ID,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Role:        string(role),
		Permissions: role.Permissions(),
	})
}
