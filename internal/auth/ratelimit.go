package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	Redis *redis.Client
}

const (
	loginMaxAttempts = 5
	loginAttemptTTL  = 10 * time.Minute
	loginBanTTL      = 1 * time.Hour
	otpMismatchTTL   = 30 * time.Minute

	// EmailCooldown is the minimum gap between reset-code emails per address.
	EmailCooldown = 60 * time.Second
)

func (r *RateLimiter) loginAttemptKey(ip string) string {
	return "login_attempts:" + ip
}

func (r *RateLimiter) loginBanKey(ip string) string {
	return "login_ban:" + ip
}

func (r *RateLimiter) IsIPBanned(ctx context.Context, ip string) bool {
	exists, _ := r.Redis.Exists(ctx, r.loginBanKey(ip)).Result()
	return exists == 1
}

func (r *RateLimiter) RegisterLoginFailure(ctx context.Context, ip string) error {
	key := r.loginAttemptKey(ip)

	attempts, err := r.Redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		r.Redis.Expire(ctx, key, loginAttemptTTL)
	}
	if attempts >= loginMaxAttempts {
		r.Redis.Set(ctx, r.loginBanKey(ip), "1", loginBanTTL)
		r.Redis.Expire(ctx, key, loginBanTTL)
	}
	return nil
}

func (r *RateLimiter) ResetLogin(ctx context.Context, ip string) {
	r.Redis.Del(ctx, r.loginAttemptKey(ip))
}

// RegisterCodeMismatch counts wrong reset codes per email. Nothing locks out
// on it yet; the counter exists so mismatch bursts are observable and a
// future limit can act on them.
func (r *RateLimiter) RegisterCodeMismatch(ctx context.Context, email string) (int64, error) {
	key := "otp_mismatch:" + strings.ToLower(email)
	attempts, err := r.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if attempts == 1 {
		r.Redis.Expire(ctx, key, otpMismatchTTL)
	}
	return attempts, nil
}

func (r *RateLimiter) CooldownTTL(ctx context.Context, key string) time.Duration {
	ttl, err := r.Redis.TTL(ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}

func (r *RateLimiter) SetCooldown(ctx context.Context, key string, ttl time.Duration) {
	r.Redis.Set(ctx, key, "1", ttl)
}
