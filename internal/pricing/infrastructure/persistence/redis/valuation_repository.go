package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// ValuationCache 最新估值结果的 Redis 读缓存，命中即免去一次 MySQL 回表。
type ValuationCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewValuationCache(client redis.UniversalClient) *ValuationCache {
	return &ValuationCache{
		client: client,
		prefix: "valuation:latest:",
		ttl:    15 * time.Minute,
	}
}

func (r *ValuationCache) SaveLatest(ctx context.Context, result *domain.ValuationResult) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(result.Symbol), data, r.ttl).Err()
}

func (r *ValuationCache) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	if symbol == "" {
		return nil, nil
	}
	data, err := r.client.Get(ctx, r.key(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.ValuationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ValuationCache) Invalidate(ctx context.Context, symbol string) error {
	return r.client.Del(ctx, r.key(symbol)).Err()
}

func (r *ValuationCache) key(symbol string) string {
	return fmt.Sprintf("%s%s", r.prefix, symbol)
}
