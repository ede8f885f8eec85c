package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/ports"
)

// refreshTokenBytes gives 256 bits of entropy per opaque refresh token.
const refreshTokenBytes = 32

type accessClaims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints HS256 access tokens and opaque refresh tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess signs an access token binding the account's email and role.
// The jti claim makes every issued token unique, so rotating a session always
// yields a fresh token even within the timestamp's one-second precision.
func (i *Issuer) IssueAccess(account *domain.Account, now time.Time) (string, error) {
	claims := &accessClaims{
		Email:       account.Email,
		Role:        string(account.Role),
		Permissions: account.Role.Permissions(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccess validates signature and expiry. Malformed, tampered, and
// expired tokens all come back as domain.ErrUnauthenticated so the gate
// treats them uniformly, and token failures stay distinct from wrong-password
// failures in the taxonomy.
func (i *Issuer) ParseAccess(token string) (*ports.AccessClaims, error) {
	claims := &accessClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthenticated
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	return &ports.AccessClaims{
		Email:       claims.Email,
		Role:        role,
		Permissions: claims.Permissions,
	}, nil
}

// IssueRefresh mints an unguessable opaque value. The value is returned to
// the caller; only its digest is meant to be stored.
func (i *Issuer) IssueRefresh(now time.Time) (ports.RefreshGrant, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return ports.RefreshGrant{}, fmt.Errorf("generate refresh token: %w", err)
	}
	value := hex.EncodeToString(b)
	return ports.RefreshGrant{
		Value:     value,
		Hash:      i.HashRefresh(value),
		ExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

// HashRefresh is the at-rest representation of a refresh token, analogous to
// password hashing: lookups re-hash the presented value.
func (i *Issuer) HashRefresh(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
