package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-equipment-tracker/internal/config"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect returns a client for cfg, or nil when no address is configured
func Connect(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDRESS not set; reminder dedupe and locking disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis at %s: %w", cfg.Addr, err)
	}

	log.Info("Connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}

// Store implements reminder dedupe and the reminder lock on top of Redis
type Store struct {
	rdb    *redis.Client
	locker *redislock.Client
	log    *zap.Logger
}

func NewStore(rdb *redis.Client, log *zap.Logger) *Store {
	return &Store{
		rdb:    rdb,
		locker: redislock.New(rdb),
		log:    log,
	}
}

func (s *Store) WasSent(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) MarkSent(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// TryLock obtains key without retrying. ok is false when someone else holds it.
func (s *Store) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lock, err := s.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	unlock := func() {
		// The parent context may already be cancelled at shutdown
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			s.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return unlock, true, nil
}
