package ports

import (
	"context"

	"github.com/servicecenter/service-center-api/internal/core/domain"
)

// RegisterInput carries a self-service registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// RegisterResult acknowledges a registration. The OTP itself is only ever
// delivered out-of-band through the notifier.
type RegisterResult struct {
	Email string
}

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Role         domain.Role
	FirstName    string
	LastName     string
}

// IdentityService orchestrates the account and session lifecycle.
type IdentityService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	VerifyOTP(ctx context.Context, code string) error
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	CreateEmployee(ctx context.Context, email, firstName, lastName string) (*domain.Account, error)
	GetAccount(ctx context.Context, email string) (*domain.Account, error)
}
