package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/agenthands/cartoonist/internal/logging"
)

const keyPrefix = "cartoonist:ratelimit"

// DefaultRedisTimeout bounds one admission round trip. Past it the local
// counters answer, so a slow Redis never stalls a request.
const DefaultRedisTimeout = 250 * time.Millisecond

// Redis shares counters across instances. On any Redis error it answers from
// a local Memory limiter instead.
type Redis struct {
	client   redis.UniversalClient
	limit    int
	window   time.Duration
	timeout  time.Duration
	now      func() time.Time
	fallback *Memory
	logger   *log.Logger
}

func NewRedis(client redis.UniversalClient, limit int, window time.Duration, logger *log.Logger) *Redis {
	limit, window = normalize(limit, window)
	return &Redis{
		client:   client,
		limit:    limit,
		window:   window,
		timeout:  DefaultRedisTimeout,
		now:      time.Now,
		fallback: NewMemory(limit, window),
		logger:   logging.OrDiscard(logger),
	}
}

// NewRedisFromURL parses a redis:// URL; a bare host:port is accepted too.
func NewRedisFromURL(url string, limit int, window time.Duration, logger *log.Logger) *Redis {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return NewRedis(redis.NewClient(opt), limit, window, logger)
}

func (r *Redis) Admit(ctx context.Context, callerID string) Decision {
	now := r.now()
	start := windowStart(now, r.window)
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, callerID, start.Unix())

	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(rctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(rctx, key)
		pipe.Expire(rctx, key, r.window+time.Second)
		return nil
	})
	if err != nil {
		r.logger.Warn("redis rate limiter unavailable, using local counters", "caller_id", callerID, "err", err)
		r.fallback.mu.Lock()
		defer r.fallback.mu.Unlock()
		return r.fallback.admitAt(now, callerID)
	}

	if incr.Val() > int64(r.limit) {
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter(now, r.window)}
	}
	return Decision{Allowed: true}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
