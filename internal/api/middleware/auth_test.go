package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/token"
)

func issueTestToken(t *testing.T, issuer *token.Issuer, now time.Time) string {
	t.Helper()
	signed, err := issuer.IssueAccess(&domain.Account{
		ID:    "acc-1",
		Email: "alice@x.com",
		Role:  domain.RoleCustomer,
	}, now)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, issuer *token.Issuer, header string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(issuer)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestAuth_ValidToken(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	signed := issueTestToken(t, issuer, time.Now().UTC())

	rec, c, err := runAuth(t, issuer, "Bearer "+signed)
	if err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := c.Get(CtxEmail); got != "alice@x.com" {
		t.Errorf("ctx email = %v", got)
	}
	if got := c.Get(CtxRole); got != domain.RoleCustomer {
		t.Errorf("ctx role = %v", got)
	}
}

func TestAuth_LowercaseBearerScheme(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	signed := issueTestToken(t, issuer, time.Now().UTC())

	if _, _, err := runAuth(t, issuer, "bearer "+signed); err != nil {
		t.Fatalf("scheme match is case-insensitive, got %v", err)
	}
}

func TestAuth_Rejections(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	foreign := issueTestToken(t, token.NewIssuer("other-secret", time.Minute, time.Hour), time.Now().UTC())

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "token-without-scheme"},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runAuth(t, issuer, tc.header)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected *echo.HTTPError, got %v", err)
			}
			if httpErr.Code != http.StatusUnauthorized {
				t.Fatalf("code = %d, want 401", httpErr.Code)
			}
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Minute, time.Hour)
	signed := issueTestToken(t, issuer, time.Now().UTC().Add(-time.Hour))

	_, _, err := runAuth(t, issuer, "Bearer "+signed)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}
