package cookies

import (
	"context"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/initiative-tracker/internal/redis"
)

const cookieKeyPrefix = "tracker_cookie:"

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// RedisConfig contains configuration for the Redis cookie repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL defaults to DefaultTTL
	TTL time.Duration
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("client")
	}
	if cfg.TTL < 0 {
		vb.Field("ttl", "cannot be negative")
	}
	return vb.Build()
}

// NewRedis creates a Redis-backed cookie repository. Expiry is enforced by
// Redis itself through the key TTL.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
		ttl:    ttl,
	}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := cookieKeyPrefix + input.SessionID

	pipe := r.client.TxPipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read cookie")
	}

	value, err := getCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, errors.NotFoundf("no cookie stored for session %s", input.SessionID)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read cookie")
	}

	out := &GetOutput{Value: value}
	if remaining := ttlCmd.Val(); remaining > 0 {
		out.ExpiresAt = r.clock.Now().Add(remaining)
	}
	return out, nil
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := cookieKeyPrefix + input.SessionID
	if err := r.client.Set(ctx, key, input.Value, r.ttl).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to save cookie")
	}

	slog.Debug("Saved cookie",
		"session_id", input.SessionID,
		"cookie_bytes", len(input.Value),
		"store", "redis")

	return &SaveOutput{ExpiresAt: r.clock.Now().Add(r.ttl)}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	if err := r.client.Del(ctx, cookieKeyPrefix+input.SessionID).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete cookie")
	}
	return &DeleteOutput{}, nil
}
