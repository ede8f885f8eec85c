package ports

import (
	"context"

	"github.com/servicecenter/service-center-api/internal/core/domain"
)

// CredentialStore is the persistence boundary for accounts. Implementations
// must make every method a single atomic unit: read-check-write sequences
// (insert-if-absent, consume-once, swap-if-current) happen inside the store
// so concurrent callers cannot observe lost updates.
type CredentialStore interface {
	// Create inserts a new account. Returns domain.ErrEmailExists when the
	// email is already taken; exactly one of N concurrent creates wins.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByOTPCode(ctx context.Context, code string) (*domain.Account, error)
	FindByRefreshTokenHash(ctx context.Context, hash string) (*domain.Account, error)

	// MarkVerified consumes the pending OTP matching code and flips the
	// account to verified in one step. Returns domain.ErrInvalidOTP when no
	// account currently holds that code (including a code already consumed).
	MarkVerified(ctx context.Context, code string) (*domain.Account, error)

	// SetOTP replaces any outstanding OTP on the account.
	SetOTP(ctx context.Context, email string, otp domain.PendingOTP) error

	// ClearOTP drops the pending OTP so it can never validate again,
	// conditional on the stored code still being code. A fresh OTP issued in
	// the meantime is left untouched; that case is not an error.
	ClearOTP(ctx context.Context, email, code string) error

	// ResetPassword swaps the password hash and clears the pending OTP,
	// conditional on the stored OTP code still matching. Returns
	// domain.ErrInvalidOrExpiredOTP when the condition misses.
	ResetPassword(ctx context.Context, email, code, passwordHash string) error

	// SetRefreshToken stores the sole valid refresh token for the account,
	// overwriting any prior one.
	SetRefreshToken(ctx context.Context, email string, token domain.RefreshToken) error

	// RotateRefreshToken swaps the stored token for a new one, conditional on
	// the stored hash still being oldHash. A concurrent rotation that already
	// superseded oldHash makes this return domain.ErrInvalidRefreshToken.
	RotateRefreshToken(ctx context.Context, oldHash string, token domain.RefreshToken) (*domain.Account, error)

	// ClearRefreshToken invalidates the current session (logout).
	ClearRefreshToken(ctx context.Context, email string) error
}
