package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jobai-go/internal/config"
	"jobai-go/internal/constants"
	"jobai-go/internal/tracing"
	"jobai-go/internal/types"
)

var redisTracer = otel.Tracer("jobai-go/storage/redis")

// Redis holds the result cache and the processed-file MD5 set.
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedis connects to Redis and installs the OpenTelemetry hook.
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// ResultTTL is the configured lifetime of cached results.
func (r *Redis) ResultTTL() time.Duration {
	return config.GetDuration(r.config.ResultCacheTTL, constants.ResultCacheDuration)
}

// MD5ExpireDuration is the configured lifetime of the processed MD5 set.
func (r *Redis) MD5ExpireDuration() time.Duration {
	if r.config.MD5RecordExpireDays <= 0 {
		return constants.MD5RecordExpiry
	}
	return time.Duration(r.config.MD5RecordExpireDays) * 24 * time.Hour
}

// GetCachedResult returns the cached response for a file MD5. A miss returns (nil, nil).
func (r *Redis) GetCachedResult(ctx context.Context, fileMD5 string) (*types.ExtractionResponse, error) {
	key := fmt.Sprintf(constants.KeyExtractionResult, fileMD5)
	ctx, span := redisTracer.Start(ctx, "Redis.GetCachedResult",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.redis.key", tracing.SafeRedisKey(key))))
	defer span.End()

	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("failed to read cached result: %w", err)
	}

	var resp types.ExtractionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		// A corrupt entry is dropped so the next request recomputes it.
		r.Client.Del(ctx, key)
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return &resp, nil
}

// CacheResult stores resp under the file MD5 for ResultTTL.
func (r *Redis) CacheResult(ctx context.Context, fileMD5 string, resp *types.ExtractionResponse) error {
	key := fmt.Sprintf(constants.KeyExtractionResult, fileMD5)
	ctx, span := redisTracer.Start(ctx, "Redis.CacheResult",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.redis.key", tracing.SafeRedisKey(key))))
	defer span.End()

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode result for cache: %w", err)
	}
	if err := r.Client.Set(ctx, key, data, r.ResultTTL()).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// MarkProcessed records fileMD5 in the dedup set and maps it to the submission that
// first produced it. It reports whether the MD5 was new.
func (r *Redis) MarkProcessed(ctx context.Context, fileMD5, submissionUUID string) (bool, error) {
	ctx, span := redisTracer.Start(ctx, "Redis.MarkProcessed", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	expiry := r.MD5ExpireDuration()
	pipe := r.Client.TxPipeline()
	added := pipe.SAdd(ctx, constants.KeyFileMD5Set, fileMD5)
	pipe.Expire(ctx, constants.KeyFileMD5Set, expiry)
	pipe.SetNX(ctx, fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, fileMD5), submissionUUID, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("failed to record processed md5: %w", err)
	}
	return added.Val() == 1, nil
}

// SubmissionForMD5 returns the submission UUID that first produced fileMD5, or "".
func (r *Redis) SubmissionForMD5(ctx context.Context, fileMD5 string) (string, error) {
	v, err := r.Client.Get(ctx, fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, fileMD5)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read md5 mapping: %w", err)
	}
	return v, nil
}
