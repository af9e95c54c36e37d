// Package ratelimit throttles login attempts using a fixed window in redis.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopstack/shopbill/internal/config"
)

const keyLoginAttempt = "auth:login:%s:%s"

// LoginLimiter counts failed login attempts per email+IP. A nil or disabled
// limiter allows everything, so deployments without redis still work.
type LoginLimiter struct {
	enabled bool
	client  *redis.Client

	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(cfg config.Config) *LoginLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &LoginLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &LoginLimiter{
		enabled:     true,
		client:      client,
		maxAttempts: 10,
		window:      10 * time.Minute,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow reports whether another attempt is permitted for this email+IP pair.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	key := fmt.Sprintf(keyLoginAttempt, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(ip))
	count, err := l.client.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return true, err
	}
	return count < l.maxAttempts, nil
}

// RecordFailure bumps the failure counter and refreshes the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	if !l.Enabled() {
		return nil
	}

	key := fmt.Sprintf(keyLoginAttempt, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(ip))
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	_, err := pipe.Exec(ctx)
	return err
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email, ip string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyLoginAttempt, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(ip))
	return l.client.Del(ctx, key).Err()
}
