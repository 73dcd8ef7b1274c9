package domain

import "context"

// ValuationRepository 估值结果仓储接口
type ValuationRepository interface {
	// WithTx 在单个数据库事务中执行 fn，事务对象通过 context 传递。
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	SaveValuation(ctx context.Context, result *ValuationResult) error
	GetLatestValuation(ctx context.Context, symbol string) (*ValuationResult, error)
	GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*ValuationResult, error)
}

// ValuationCache 最新估值的读缓存接口，实现可缺省。
type ValuationCache interface {
	SaveLatest(ctx context.Context, result *ValuationResult) error
	GetLatest(ctx context.Context, symbol string) (*ValuationResult, error)
}

// MarketDataClient 市场数据客户端接口，请求未携带现货价时用它解析。
type MarketDataClient interface {
	GetSpot(ctx context.Context, symbol string) (float64, error)
}
