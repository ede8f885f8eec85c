package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/api/metrics"
	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// AuthHandler exposes the identity lifecycle over HTTP. All failures from the
// identity service are typed domain errors; the central error handler maps
// them to status codes, so handlers just propagate.
type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type registerRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

type verifyOTPRequest struct {
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTPCode     string `json:"otp_code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Email:        s.Email,
		Role:         string(s.Role),
		FirstName:    s.FirstName,
		LastName:     s.LastName,
	}
}

// Register creates an unverified account and sends its OTP.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, messageResponse{
		Message: "Registration successful. OTP sent to: " + result.Email,
	})
}

// VerifyOTP activates the account matching the submitted code.
//
// @Summary      Verify a registration OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "OTP code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.identity.VerifyOTP(c.Request().Context(), req.OTPCode); err != nil {
		metrics.OTPVerificationsTotal.WithLabelValues(otpOutcome(err)).Inc()
		return err
	}

	metrics.OTPVerificationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Account verified successfully"})
}

// Login authenticates credentials and returns a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Refresh rotates a refresh token into a new token pair. The presented token
// is single-use: redeeming it invalidates it whether or not a new pair is
// returned to this caller.
//
// @Summary      Refresh the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.identity.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(refreshOutcome(err)).Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Logout invalidates the caller's refresh token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.identity.Logout(c.Request().Context(), email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

// ForgotPassword issues a password-reset OTP.
//
// @Summary      Request a password reset OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.identity.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", resetOutcome(err)).Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("request", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

// ResetPassword sets a new password after OTP verification.
//
// @Summary      Reset the password with an OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.identity.ResetPassword(c.Request().Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("confirm", resetOutcome(err)).Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("confirm", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

func registerOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailExists):
		return "email_exists"
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrEmailRequired):
		return "invalid_role"
	default:
		return "error"
	}
}

func otpOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOTP):
		return "invalid"
	case errors.Is(err, domain.ErrOTPExpired):
		return "expired"
	default:
		return "error"
	}
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountNotVerified):
		return "not_verified"
	default:
		return "error"
	}
}

func refreshOutcome(err error) string {
	if errors.Is(err, domain.ErrInvalidRefreshToken) {
		return "invalid"
	}
	return "error"
}

func resetOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOrExpiredOTP), errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrOTPThrottled):
		return "rejected"
	default:
		return "error"
	}
}
