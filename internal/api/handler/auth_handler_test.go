package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/api/middleware"
	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// stubIdentity scripts the identity service per test case.
type stubIdentity struct {
	registerFn       func(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error)
	verifyOTPFn      func(ctx context.Context, code string) error
	loginFn          func(ctx context.Context, email, password string) (*ports.Session, error)
	refreshFn        func(ctx context.Context, refreshToken string) (*ports.Session, error)
	logoutFn         func(ctx context.Context, email string) error
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, email, code, newPassword string) error
	createEmployeeFn func(ctx context.Context, email, firstName, lastName string) (*domain.Account, error)
	getAccountFn     func(ctx context.Context, email string) (*domain.Account, error)
}

func (s *stubIdentity) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, input)
}

func (s *stubIdentity) VerifyOTP(ctx context.Context, code string) error {
	return s.verifyOTPFn(ctx, code)
}

func (s *stubIdentity) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubIdentity) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubIdentity) Logout(ctx context.Context, email string) error {
	return s.logoutFn(ctx, email)
}

func (s *stubIdentity) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotPasswordFn(ctx, email)
}

func (s *stubIdentity) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.resetPasswordFn(ctx, email, code, newPassword)
}

func (s *stubIdentity) CreateEmployee(ctx context.Context, email, firstName, lastName string) (*domain.Account, error) {
	return s.createEmployeeFn(ctx, email, firstName, lastName)
}

func (s *stubIdentity) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	return s.getAccountFn(ctx, email)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	var got ports.RegisterInput
	h := NewAuthHandler(&stubIdentity{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
			got = input
			return &ports.RegisterResult{Email: "alice@x.com"}, nil
		},
	})

	body := `{"email":"alice@x.com","password":"Secret123","first_name":"Alice","last_name":"Smith","role":"CUSTOMER"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if got.Email != "alice@x.com" || got.Role != "CUSTOMER" {
		t.Fatalf("unexpected input passed to service: %+v", got)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["message"] != "Registration successful. OTP sent to: alice@x.com" {
		t.Fatalf("unexpected message: %q", resp["message"])
	}
}

func TestRegisterHandler_ValidationFailures(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatal("service must not be called on invalid payload")
			return nil, nil
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"bad email", `{"email":"not-an-email","password":"Secret123","first_name":"A","last_name":"B","role":"CUSTOMER"}`},
		{"short password", `{"email":"a@x.com","password":"abc","first_name":"A","last_name":"B","role":"CUSTOMER"}`},
		{"missing role", `{"email":"a@x.com","password":"Secret123","first_name":"A","last_name":"B"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/api/auth/register", tc.body)
			err := h.Register(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestRegisterHandler_PropagatesDomainError(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, domain.ErrEmailExists
		},
	})

	body := `{"email":"alice@x.com","password":"Secret123","first_name":"A","last_name":"B","role":"CUSTOMER"}`
	c, _ := newTestContext(t, http.MethodPost, "/api/auth/register", body)

	if err := h.Register(c); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists to propagate, got %v", err)
	}
}

func TestVerifyOTPHandler(t *testing.T) {
	var gotCode string
	h := NewAuthHandler(&stubIdentity{
		verifyOTPFn: func(_ context.Context, code string) error {
			gotCode = code
			return nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/verify-otp", `{"otp_code":"123456"}`)
	if err := h.VerifyOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotCode != "123456" {
		t.Fatalf("code passed to service = %q", gotCode)
	}
}

func TestVerifyOTPHandler_RejectsNonNumericCode(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		verifyOTPFn: func(context.Context, string) error {
			t.Fatal("service must not be called")
			return nil
		},
	})

	for _, body := range []string{`{"otp_code":"12345"}`, `{"otp_code":"abcdef"}`, `{"otp_code":""}`} {
		c, _ := newTestContext(t, http.MethodPost, "/api/auth/verify-otp", body)
		err := h.VerifyOTP(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestLoginHandler_Success(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			return &ports.Session{
				AccessToken:  "access",
				RefreshToken: "refresh",
				Email:        email,
				Role:         domain.RoleCustomer,
				FirstName:    "Alice",
				LastName:     "Smith",
			}, nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/login", `{"email":"alice@x.com","password":"Secret123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp sessionResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken != "access" || resp.RefreshToken != "refresh" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	if resp.Role != "CUSTOMER" || resp.Email != "alice@x.com" {
		t.Fatalf("unexpected identity: %+v", resp)
	}
}

func TestLoginHandler_PropagatesServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountNotVerified} {
		h := NewAuthHandler(&stubIdentity{
			loginFn: func(context.Context, string, string) (*ports.Session, error) {
				return nil, want
			},
		})
		c, _ := newTestContext(t, http.MethodPost, "/api/auth/login", `{"email":"alice@x.com","password":"bad"}`)
		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v to propagate, got %v", want, err)
		}
	}
}

func TestRefreshHandler(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.Session, error) {
			if refreshToken != "old-token" {
				return nil, domain.ErrInvalidRefreshToken
			}
			return &ports.Session{AccessToken: "new-access", RefreshToken: "new-refresh", Role: domain.RoleCustomer}, nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old-token"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	decodeBody(t, rec, &resp)
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected rotated token: %+v", resp)
	}

	c, _ = newTestContext(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"stale"}`)
	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestLogoutHandler(t *testing.T) {
	var gotEmail string
	h := NewAuthHandler(&stubIdentity{
		logoutFn: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/logout", "")
	c.Set(middleware.CtxEmail, "alice@x.com")
	c.Set(middleware.CtxRole, domain.RoleCustomer)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotEmail != "alice@x.com" {
		t.Fatalf("email passed to service = %q", gotEmail)
	}
}

func TestLogoutHandler_MissingClaims(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		logoutFn: func(context.Context, string) error {
			t.Fatal("service must not be called without claims")
			return nil
		},
	})

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/logout", "")
	err := h.Logout(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestForgotPasswordHandler(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		forgotPasswordFn: func(_ context.Context, email string) error {
			if email != "alice@x.com" {
				return domain.ErrAccountNotFound
			}
			return nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"alice@x.com"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	c, _ = newTestContext(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@x.com"}`)
	if err := h.ForgotPassword(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestResetPasswordHandler(t *testing.T) {
	var gotEmail, gotCode, gotPassword string
	h := NewAuthHandler(&stubIdentity{
		resetPasswordFn: func(_ context.Context, email, code, newPassword string) error {
			gotEmail, gotCode, gotPassword = email, code, newPassword
			return nil
		},
	})

	body := `{"email":"alice@x.com","otp_code":"654321","new_password":"NewSecret9"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/auth/reset-password", body)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotEmail != "alice@x.com" || gotCode != "654321" || gotPassword != "NewSecret9" {
		t.Fatalf("unexpected arguments: %q %q %q", gotEmail, gotCode, gotPassword)
	}
}

func TestResetPasswordHandler_PropagatesRejection(t *testing.T) {
	h := NewAuthHandler(&stubIdentity{
		resetPasswordFn: func(context.Context, string, string, string) error {
			return domain.ErrInvalidOrExpiredOTP
		},
	})

	body := `{"email":"alice@x.com","otp_code":"000000","new_password":"NewSecret9"}`
	c, _ := newTestContext(t, http.MethodPost, "/api/auth/reset-password", body)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidOrExpiredOTP) {
		t.Fatalf("expected ErrInvalidOrExpiredOTP, got %v", err)
	}
}
