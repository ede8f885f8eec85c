package domain

import (
	"errors"
	"strings"
	"time"
)

// Role classifies what an account is allowed to do.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
)

// rolePermissions maps each role to the permission set embedded in access
// tokens and consumed by the business services. The account entity itself
// stays a plain record; nothing transport-specific hangs off it.
var rolePermissions = map[Role][]string{
	RoleAdmin:    {"staff:manage", "work-orders:read", "appointments:read"},
	RoleCustomer: {"vehicles:own", "appointments:own", "work-orders:request"},
	RoleEmployee: {"work-orders:fulfill", "time-logs:write", "part-requests:write"},
}

// ParseRole validates a caller-supplied role string.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(s)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCustomer:
		return RoleCustomer, true
	case RoleEmployee:
		return RoleEmployee, true
	}
	return "", false
}

// Permissions returns the permission set for the role. Unknown roles get none.
func (r Role) Permissions() []string {
	return rolePermissions[r]
}

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrAccountNotVerified  = errors.New("account not verified")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired otp")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidRole         = errors.New("invalid role")
	ErrOTPThrottled        = errors.New("otp requested too recently")
	ErrEmailRequired       = errors.New("email required")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
	ErrForbidden           = errors.New("access forbidden")
)

// PendingOTP is a one-time passcode awaiting verification. At most one is
// outstanding per account; issuing a new one replaces the prior outright.
type PendingOTP struct {
	Code      string    `json:"-" bson:"code"`
	ExpiresAt time.Time `json:"-" bson:"expires_at"`
}

// ValidAt reports whether the code is still redeemable at t.
// Validity is the half-open interval [issue, ExpiresAt).
func (o *PendingOTP) ValidAt(t time.Time) bool {
	return o != nil && t.Before(o.ExpiresAt)
}

// RefreshToken is the server-side record of the single valid refresh token
// for an account. Only a SHA-256 digest of the opaque value is stored.
type RefreshToken struct {
	Hash      string    `json:"-" bson:"hash"`
	ExpiresAt time.Time `json:"-" bson:"expires_at"`
}

// ValidAt reports whether the token is still redeemable at t.
func (r *RefreshToken) ValidAt(t time.Time) bool {
	return r != nil && t.Before(r.ExpiresAt)
}

// Account is the sole entity of the identity core.
type Account struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Role         Role          `json:"role"`
	Verified     bool          `json:"verified"`
	PendingOTP   *PendingOTP   `json:"-"`
	RefreshToken *RefreshToken `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NormalizeEmail canonicalizes an email for lookup: emails are a
// case-insensitive unique key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
