package marketdata

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// MockClient 固定价格的市场数据客户端，开发环境和测试用。
type MockClient struct {
	Price float64
}

func NewMockClient(price float64) domain.MarketDataClient {
	if price <= 0 {
		price = 100
	}
	return &MockClient{Price: price}
}

func (c *MockClient) GetSpot(ctx context.Context, symbol string) (float64, error) {
	return c.Price, nil
}
