package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servicecenter/service-center-api/internal/core/domain"
	"github.com/servicecenter/service-center-api/internal/core/ports"
)

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IdentityConfig carries the deployment parameters of the identity core.
// Everything is explicit; nothing is read from ambient globals.
type IdentityConfig struct {
	// AdminEmail is the single predefined admin identity. ADMIN
	// self-registration targets this address and nothing else.
	AdminEmail string
	// AdminPassword seeds the bootstrap admin account at startup.
	AdminPassword string
	// RegisterOTPTTL is the validity window of registration OTPs.
	RegisterOTPTTL time.Duration
	// ResetOTPTTL is the validity window of password-reset OTPs.
	ResetOTPTTL time.Duration
}

// IdentityService orchestrates registration, verification, login, refresh
// rotation, and password reset against the credential store.
type IdentityService struct {
	store    ports.CredentialStore
	hasher   ports.SecretHasher
	notifier ports.Notifier
	tokens   ports.TokenIssuer
	throttle ports.SendThrottle
	cfg      IdentityConfig
	logger   zerolog.Logger
	now      func() time.Time
}

func NewIdentityService(
	store ports.CredentialStore,
	hasher ports.SecretHasher,
	notifier ports.Notifier,
	tokens ports.TokenIssuer,
	throttle ports.SendThrottle,
	cfg IdentityConfig,
	logger zerolog.Logger,
) *IdentityService {
	if cfg.RegisterOTPTTL <= 0 {
		cfg.RegisterOTPTTL = 10 * time.Minute
	}
	if cfg.ResetOTPTTL <= 0 {
		cfg.ResetOTPTTL = 5 * time.Minute
	}
	return &IdentityService{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		tokens:   tokens,
		throttle: throttle,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an unverified account and mails its OTP. Only CUSTOMER and
// ADMIN may self-register; ADMIN registration targets the predefined admin
// email regardless of the submitted address.
func (s *IdentityService) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	role, ok := domain.ParseRole(input.Role)
	if !ok || role == domain.RoleEmployee {
		return nil, domain.ErrInvalidRole
	}

	var email string
	if role == domain.RoleAdmin {
		email = domain.NormalizeEmail(s.cfg.AdminEmail)
		exists, err := s.store.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailExists
		}
	} else {
		email = domain.NormalizeEmail(input.Email)
		if email == "" {
			return nil, domain.ErrEmailRequired
		}
		exists, err := s.store.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailExists
		}
	}

	if err := s.allowSend(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Verified:     false,
		PendingOTP:   &domain.PendingOTP{Code: code, ExpiresAt: now.Add(s.cfg.RegisterOTPTTL)},
		CreatedAt:    now,
	}

	if _, err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.notifier.SendOTP(ctx, email, code); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("otp delivery failed")
		return nil, err
	}

	s.logger.Info().Str("email", email).Str("role", string(role)).Msg("account registered, otp sent")
	return &ports.RegisterResult{Email: email}, nil
}

// VerifyOTP consumes a registration OTP and activates its account. A code
// validates at most once: success clears it, and an expired code is cleared
// so it can never validate later.
func (s *IdentityService) VerifyOTP(ctx context.Context, code string) error {
	account, err := s.store.FindByOTPCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidOTP
		}
		return err
	}

	if !account.PendingOTP.ValidAt(s.now()) {
		if err := s.store.ClearOTP(ctx, account.Email, code); err != nil {
			return err
		}
		return domain.ErrOTPExpired
	}

	if _, err := s.store.MarkVerified(ctx, code); err != nil {
		return err
	}

	s.logger.Info().Str("email", account.Email).Msg("account verified")
	return nil
}

// Login checks credentials and mints a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	account, err := s.store.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.Verified {
		return nil, domain.ErrAccountNotVerified
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.mintSession(ctx, account, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", account.Email).Str("role", string(account.Role)).Msg("login succeeded")
	return session, nil
}

// Refresh redeems a refresh token for a new session, rotating the stored
// token so the presented value is never redeemable twice. Expired and unknown
// tokens are indistinguishable to the caller.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	hash := s.tokens.HashRefresh(refreshToken)

	account, err := s.store.FindByRefreshTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	if !account.RefreshToken.ValidAt(s.now()) {
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := s.mintSession(ctx, account, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", account.Email).Msg("session refreshed")
	return session, nil
}

// mintSession issues an access token plus a fresh refresh token and persists
// the latter. With oldHash set the persist is a conditional rotation; a
// concurrent rotation that already replaced oldHash loses here.
func (s *IdentityService) mintSession(ctx context.Context, account *domain.Account, oldHash string) (*ports.Session, error) {
	grant, err := s.tokens.IssueRefresh(s.now())
	if err != nil {
		return nil, err
	}
	stored := domain.RefreshToken{Hash: grant.Hash, ExpiresAt: grant.ExpiresAt}

	if oldHash == "" {
		if err := s.store.SetRefreshToken(ctx, account.Email, stored); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.store.RotateRefreshToken(ctx, oldHash, stored); err != nil {
			return nil, err
		}
	}

	access, err := s.tokens.IssueAccess(account, s.now())
	if err != nil {
		return nil, err
	}

	return &ports.Session{
		AccessToken:  access,
		RefreshToken: grant.Value,
		Email:        account.Email,
		Role:         account.Role,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
	}, nil
}

// Logout invalidates the account's current refresh token.
func (s *IdentityService) Logout(ctx context.Context, email string) error {
	return s.store.ClearRefreshToken(ctx, domain.NormalizeEmail(email))
}

// ForgotPassword issues a reset OTP, replacing any outstanding one.
func (s *IdentityService) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if _, err := s.store.FindByEmail(ctx, email); err != nil {
		return err
	}

	if err := s.allowSend(ctx, email); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	otp := domain.PendingOTP{Code: code, ExpiresAt: s.now().Add(s.cfg.ResetOTPTTL)}
	if err := s.store.SetOTP(ctx, email, otp); err != nil {
		return err
	}

	if err := s.notifier.SendOTP(ctx, email, code); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("reset otp delivery failed")
		return err
	}

	s.logger.Info().Str("email", email).Msg("password reset otp sent")
	return nil
}

// ResetPassword swaps the password after checking the reset OTP. Invalid and
// expired codes collapse into one externally visible error.
func (s *IdentityService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if account.PendingOTP == nil || account.PendingOTP.Code != code || !account.PendingOTP.ValidAt(s.now()) {
		return domain.ErrInvalidOrExpiredOTP
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.ResetPassword(ctx, email, code, hash); err != nil {
		return err
	}

	s.logger.Info().Str("email", email).Msg("password reset")
	return nil
}

// CreateEmployee provisions a pre-verified EMPLOYEE account with a generated
// password, delivered once through the notifier. Invoked only from an
// already-authorized admin context.
func (s *IdentityService) CreateEmployee(ctx context.Context, email, firstName, lastName string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailExists
	}

	password, err := generatePassword(8)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleEmployee,
		Verified:     true,
		CreatedAt:    s.now(),
	}

	created, err := s.store.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendGeneratedCredentials(ctx, email, password); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("credential delivery failed")
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("employee account created")
	return created, nil
}

// GetAccount resolves an account by email for authenticated reads.
func (s *IdentityService) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	return s.store.FindByEmail(ctx, domain.NormalizeEmail(email))
}

// EnsureAdmin seeds the bootstrap admin account if it does not exist yet.
// Called once at startup; a concurrent replica losing the insert race is fine.
func (s *IdentityService) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	email := domain.NormalizeEmail(s.cfg.AdminEmail)
	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := s.hasher.Hash(s.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         domain.RoleAdmin,
		Verified:     true,
		CreatedAt:    s.now(),
	}

	if _, err := s.store.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil
		}
		return err
	}

	s.logger.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}

func (s *IdentityService) allowSend(ctx context.Context, email string) error {
	if s.throttle == nil {
		return nil
	}
	ok, err := s.throttle.Allow(ctx, email)
	if err != nil {
		return fmt.Errorf("otp throttle: %w", err)
	}
	if !ok {
		return domain.ErrOTPThrottled
	}
	return nil
}

// generateOTP draws a uniform 6-digit decimal code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generatePassword draws length characters uniformly from passwordCharset.
func generatePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
