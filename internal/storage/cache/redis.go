package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/report"
)

var _ SummaryCache = (*Redis)(nil)

type Redis struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
}

// New returns a Redis backed cache, or Noop when no address is configured.
func New(ctx context.Context, cfg config.Redis) (SummaryCache, CleanupFunc, error) {
	if cfg.Addr == "" {
		return Noop{}, func() {}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedis(rdb, cfg.SummaryKey, cfg.SummaryTTL), func() { _ = rdb.Close() }, nil
}

func NewRedis(rdb *goredis.Client, key string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, key: key, ttl: ttl}
}

func (r *Redis) GetSummary(ctx context.Context) (report.Summary, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return report.Summary{}, false, nil
	}
	if err != nil {
		return report.Summary{}, false, fmt.Errorf("get %s: %w", r.key, err)
	}

	var summary report.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return report.Summary{}, false, fmt.Errorf("unmarshal summary: %w", err)
	}
	return summary, true, nil
}

func (r *Redis) SetSummary(ctx context.Context, summary report.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := r.rdb.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", r.key, err)
	}
	return nil
}
