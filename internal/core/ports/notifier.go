package ports

import "context"

// Notifier delivers codes and generated credentials to an email address.
// Fire-and-fail: no delivery guarantee beyond an error on transport failure,
// and no retries from the caller's side.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
	SendGeneratedCredentials(ctx context.Context, email, password string) error
}

// SendThrottle bounds how often OTP mail may be requested per destination.
type SendThrottle interface {
	// Allow reports whether a send to email is permitted right now and, when
	// permitted, starts the cooldown window.
	Allow(ctx context.Context, email string) (bool, error)
}
