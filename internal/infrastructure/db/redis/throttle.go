package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCooldown = time.Minute

// SendThrottle rate-limits OTP mail per destination address using Redis.
// Key format: otp:cooldown:<email>
type SendThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewSendThrottle creates a SendThrottle wrapping the given Redis client.
// If cooldown <= 0, defaultCooldown is used.
func NewSendThrottle(client *redis.Client, cooldown time.Duration) *SendThrottle {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &SendThrottle{client: client, cooldown: cooldown}
}

// Allow reports whether a send to email is permitted and, when it is, starts
// the cooldown window. SetNX makes check-and-start a single atomic step.
func (t *SendThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("otp cooldown check: %w", err)
	}
	return ok, nil
}

func (t *SendThrottle) key(email string) string {
	return "otp:cooldown:" + email
}
