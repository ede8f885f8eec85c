package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// AdminHandler exposes staff-management operations. The router mounts these
// behind the admin-only role tier; by the time a request lands here the
// caller is an authenticated ADMIN.
type AdminHandler struct {
	identity ports.IdentityService
}

func NewAdminHandler(identity ports.IdentityService) *AdminHandler {
	return &AdminHandler{identity: identity}
}

type createEmployeeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type employeeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CreateEmployee provisions a pre-verified employee account; the generated
// password travels only by email.
//
// @Summary      Create an employee account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee details"
// @Success      201   {object}  employeeResponse
// @Failure      409   {object}  map[string]string
// @Router       /api/admin/employees [post]
func (h *AdminHandler) CreateEmployee(c echo.Context) error {
	var req createEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.identity.CreateEmployee(c.Request().Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, employeeResponse{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Role:      string(account.Role),
	})
}
