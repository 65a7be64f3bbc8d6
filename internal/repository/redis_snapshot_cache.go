package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
)

const (
	snapshotTTL  = 30 * time.Minute
	reportsKept  = 50
	reportsTTL   = 24 * time.Hour
	snapshotKeyF = "leadpull:snapshot:%s"
	reportsKeyF  = "leadpull:reports:%s"
)

// RedisSnapshotCache implements SnapshotCache on Redis: the latest snapshot
// as a TTL'd value, the recent stage reports as a capped list. Reports do
// not carry a symbol, so the cache is bound to one instrument at
// construction.
type RedisSnapshotCache struct {
	cli    *redis.Client
	symbol string
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSnapshotCache creates a Redis-backed snapshot cache for one
// instrument.
func NewRedisSnapshotCache(cfg RedisConfig, symbol string) *RedisSnapshotCache {
	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisSnapshotCache{cli: cli, symbol: symbol}
}

var _ domrepo.SnapshotCache = (*RedisSnapshotCache)(nil)

func (c *RedisSnapshotCache) PutSnapshot(ctx context.Context, s *models.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := fmt.Sprintf(snapshotKeyF, s.Symbol)
	if err := c.cli.Set(ctx, key, b, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

func (c *RedisSnapshotCache) GetSnapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	b, err := c.cli.Get(ctx, fmt.Sprintf(snapshotKeyF, symbol)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var s models.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

func (c *RedisSnapshotCache) PutReport(ctx context.Context, r *models.StageReport) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	key := fmt.Sprintf(reportsKeyF, c.symbol)
	pipe := c.cli.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, reportsKept-1)
	pipe.Expire(ctx, key, reportsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (c *RedisSnapshotCache) LatestReports(ctx context.Context, symbol string) ([]*models.StageReport, error) {
	if symbol == "" {
		symbol = c.symbol
	}
	key := fmt.Sprintf(reportsKeyF, symbol)
	raw, err := c.cli.LRange(ctx, key, 0, reportsKept-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]*models.StageReport, 0, len(raw))
	for _, item := range raw {
		var r models.StageReport
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			continue // skip corrupt entries
		}
		out = append(out, &r)
	}
	return out, nil
}

// Close releases the Redis connection.
func (c *RedisSnapshotCache) Close() error { return c.cli.Close() }
