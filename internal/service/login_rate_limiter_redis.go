package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// Ventana deslizante sobre un sorted set: score = ms del intento.
// ARGV: now_ms, window_ms, max, member.
const redisLoginAllowScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", tonumber(ARGV[1]) - tonumber(ARGV[2]))
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`

const redisLimiterTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisLoginRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
	member func() string
}

// NewRedisLoginRateLimiter comparte los intentos de login entre réplicas.
func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisLoginRateLimiter(client, window, max)
}

func newRedisLoginRateLimiter(client redisEvaler, window time.Duration, max int) *redisLoginRateLimiter {
	window, max = limiterDefaults(window, max)
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:rl:",
		now:    func() time.Time { return time.Now().UTC() },
		member: func() string { return ulid.Make().String() },
	}
}

// Allow deja pasar el intento si redis no responde a tiempo.
func (l *redisLoginRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = normalizeLimiterKey(key)
	if key == "" {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, redisLimiterTimeout)
	defer cancel()

	allowed, err := l.client.Eval(ctx, redisLoginAllowScript, []string{l.prefix + key},
		l.now().UnixMilli(),
		l.window.Milliseconds(),
		l.max,
		l.member(),
	).Int()
	if err != nil {
		return true
	}
	return allowed == 1
}
