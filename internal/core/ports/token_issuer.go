package ports

import (
	"time"

	"github.com/servicecenter/service-center-api/internal/core/domain"
)

// AccessClaims is the identity carried by a validated access token.
type AccessClaims struct {
	Email       string
	Role        domain.Role
	Permissions []string
}

// RefreshGrant is a freshly minted opaque refresh token. Value travels to the
// client exactly once; only Hash is ever persisted.
type RefreshGrant struct {
	Value     string
	Hash      string
	ExpiresAt time.Time
}

// TokenIssuer mints and validates session credentials. Access tokens are
// stateless and short-lived; refresh tokens are opaque random values whose
// validity lives entirely in the credential store.
type TokenIssuer interface {
	// IssueAccess mints a token valid from now. Every call produces a
	// distinct token, even for the same account at the same instant.
	IssueAccess(account *domain.Account, now time.Time) (string, error)
	// ParseAccess rejects malformed, tampered, and expired tokens uniformly.
	ParseAccess(token string) (*AccessClaims, error)
	IssueRefresh(now time.Time) (RefreshGrant, error)
	HashRefresh(value string) string
}
