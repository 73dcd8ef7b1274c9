package marketdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// quoteDoc 行情服务写入报价缓存的字段子集。
type quoteDoc struct {
	Symbol    string
	BidPrice  decimal.Decimal
	AskPrice  decimal.Decimal
	LastPrice decimal.Decimal
}

// RedisQuoteClient 从行情服务的报价缓存解析现货价。
// 优先取最新成交价，缺失时退回买卖中间价。
type RedisQuoteClient struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisQuoteClient(client redis.UniversalClient) domain.MarketDataClient {
	return &RedisQuoteClient{
		client: client,
		prefix: "marketdata:quote:",
	}
}

func (c *RedisQuoteClient) GetSpot(ctx context.Context, symbol string) (float64, error) {
	data, err := c.client.Get(ctx, c.prefix+symbol).Bytes()
	if err == redis.Nil {
		return 0, fmt.Errorf("%w: no market quote for symbol %q", domain.ErrValidation, symbol)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var quote quoteDoc
	if err := json.Unmarshal(data, &quote); err != nil {
		return 0, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	if quote.LastPrice.IsPositive() {
		return quote.LastPrice.InexactFloat64(), nil
	}
	mid := quote.BidPrice.Add(quote.AskPrice).Div(decimal.NewFromInt(2))
	if mid.IsPositive() {
		return mid.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%w: quote for symbol %q carries no usable price", domain.ErrValidation, symbol)
}
