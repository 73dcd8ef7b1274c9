package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/messagequeue"
	"golang.org/x/sync/errgroup"
)

// 请求未显式给出时采用的引擎默认参数。
const (
	DefaultLatticeSteps  = 100
	DefaultMCSteps       = 50
	DefaultMCPaths       = 10000
	defaultBatchParallel = 4
)

// ValuationCommandService 处理估值相关的命令操作
// 结果持久化与领域事件发布在同一事务内完成（Outbox 模式）。
type ValuationCommandService struct {
	repo      domain.ValuationRepository
	cache     domain.ValuationCache
	market    domain.MarketDataClient
	publisher messagequeue.EventPublisher
}

// NewValuationCommandService 创建新的 ValuationCommandService 实例
func NewValuationCommandService(repo domain.ValuationRepository, cache domain.ValuationCache, market domain.MarketDataClient, publisher messagequeue.EventPublisher) *ValuationCommandService {
	return &ValuationCommandService{
		repo:      repo,
		cache:     cache,
		market:    market,
		publisher: publisher,
	}
}

// PriceForwardStart 远期启动期权估值
func (c *ValuationCommandService) PriceForwardStart(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	cmd.OptionClass = domain.ClassForwardStart
	return c.Valuate(ctx, cmd)
}

// PriceQuanto quanto 期权估值
func (c *ValuationCommandService) PriceQuanto(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	cmd.OptionClass = domain.ClassQuanto
	return c.Valuate(ctx, cmd)
}

// Valuate 按品种和方法分派定价引擎，保存结果并发布估值完成事件。
func (c *ValuationCommandService) Valuate(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	if cmd.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrValidation)
	}
	right, err := domain.ParseOptionRight(cmd.Right)
	if err != nil {
		return nil, err
	}
	method, err := domain.ParseMethod(cmd.Method)
	if err != nil {
		return nil, err
	}

	spot := cmd.Spot
	if spot == 0 {
		if c.market == nil {
			return nil, fmt.Errorf("%w: spot is required when market data is unavailable", domain.ErrValidation)
		}
		if spot, err = c.market.GetSpot(ctx, cmd.Symbol); err != nil {
			return nil, err
		}
	}

	contract := domain.OptionContract{
		Symbol:        cmd.Symbol,
		Right:         right,
		Spot:          spot,
		Strike:        cmd.Strike,
		Vol:           cmd.Vol,
		Maturity:      cmd.Maturity,
		StartTime:     cmd.StartTime,
		DomesticRate:  cmd.DomesticRate,
		DividendYield: cmd.DividendYield,
		ForeignRate:   cmd.ForeignRate,
		FXVol:         cmd.FXVol,
		Correlation:   cmd.Correlation,
	}

	// 品种与方法的组合是封闭的，未覆盖的组合一律拒绝而不是静默换方法。
	var price float64
	var greeks domain.Greeks
	var diagnostics string

	switch cmd.OptionClass {
	case domain.ClassForwardStart:
		switch method {
		case domain.MethodBS:
			res, calcErr := domain.PriceForwardStartAnalytic(contract)
			if calcErr != nil {
				return nil, calcErr
			}
			price = res.Price
			greeks = res.Greeks
		default:
			return nil, fmt.Errorf("%w: forward start options support BS only, got %s", domain.ErrUnsupportedMethod, method)
		}
	case domain.ClassQuanto:
		switch method {
		case domain.MethodLT:
			steps := cmd.Steps
			if steps == 0 {
				steps = DefaultLatticeSteps
			}
			res, calcErr := domain.PriceQuantoLattice(contract, steps, cmd.KeepHistory)
			if calcErr != nil {
				return nil, calcErr
			}
			price = res.Price
			diagnostics = marshalDiagnostics(res)
		case domain.MethodMC:
			cfg := domain.MCConfig{
				Steps:       cmd.Steps,
				Paths:       cmd.Paths,
				Seed:        cmd.Seed,
				Degree:      cmd.Degree,
				ITMFilter:   cmd.ITMFilter,
				KeepHistory: cmd.KeepHistory,
			}
			if cfg.Steps == 0 {
				cfg.Steps = DefaultMCSteps
			}
			if cfg.Paths == 0 {
				cfg.Paths = DefaultMCPaths
			}
			if cfg.Seed == 0 {
				cfg.Seed = idgen.GenID()
			}
			res, calcErr := domain.PriceQuantoMC(contract, cfg)
			if calcErr != nil {
				return nil, calcErr
			}
			price = res.Price
			diagnostics = marshalDiagnostics(res)
		default:
			return nil, fmt.Errorf("%w: quanto options support LT and MC, got %s", domain.ErrUnsupportedMethod, method)
		}
	default:
		return nil, fmt.Errorf("%w: unknown option class %q", domain.ErrValidation, cmd.OptionClass)
	}

	strike := cmd.Strike
	if strike == 0 {
		strike = spot
	}
	result := &domain.ValuationResult{
		ValuationID:  fmt.Sprintf("VAL-%d", idgen.GenID()),
		Symbol:       cmd.Symbol,
		OptionClass:  cmd.OptionClass,
		Right:        right,
		Method:       method,
		Price:        decimal.NewFromFloat(price),
		Spot:         decimal.NewFromFloat(spot),
		Strike:       decimal.NewFromFloat(strike),
		Delta:        decimal.NewFromFloat(greeks.Delta),
		Gamma:        decimal.NewFromFloat(greeks.Gamma),
		Theta:        decimal.NewFromFloat(greeks.Theta),
		Vega:         decimal.NewFromFloat(greeks.Vega),
		Rho:          decimal.NewFromFloat(greeks.Rho),
		Diagnostics:  diagnostics,
		CalculatedAt: time.Now().UnixMilli(),
	}

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if saveErr := c.repo.SaveValuation(txCtx, result); saveErr != nil {
			return saveErr
		}
		if c.publisher == nil {
			return nil
		}
		tx := contextx.GetTx(txCtx)
		event := domain.ValuationCompletedEvent{
			ValuationID:  result.ValuationID,
			Symbol:       result.Symbol,
			OptionClass:  result.OptionClass,
			Right:        string(result.Right),
			Method:       string(result.Method),
			Price:        price,
			Spot:         spot,
			Strike:       strike,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		return c.publisher.PublishInTx(txCtx, tx, domain.ValuationCompletedEventType, result.Symbol, event)
	})
	if err != nil {
		return nil, err
	}

	// 读缓存是锦上添花，写失败不影响估值结果。
	if c.cache != nil {
		_ = c.cache.SaveLatest(ctx, result)
	}
	return result, nil
}

// BatchValuate 批量估值，批内请求并发执行，单笔失败不影响其余请求。
func (c *ValuationCommandService) BatchValuate(ctx context.Context, cmd BatchValuationCommand) (*BatchValuationResult, error) {
	results := make([]*domain.ValuationResult, len(cmd.Requests))
	errs := make([]error, len(cmd.Requests))

	parallel := cmd.Parallel
	if parallel <= 0 {
		parallel = defaultBatchParallel
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range cmd.Requests {
		g.Go(func() error {
			req := cmd.Requests[i]
			if req.Seed == 0 && cmd.BaseSeed != 0 {
				req.Seed = cmd.BaseSeed + uint64(i)
			}
			res, err := c.Valuate(gctx, req)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &BatchValuationResult{BatchID: cmd.BatchID}
	for i := range cmd.Requests {
		if errs[i] != nil {
			out.FailureCount++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", cmd.Requests[i].Symbol, errs[i]))
			continue
		}
		out.SuccessCount++
		out.Results = append(out.Results, results[i])
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.BatchValuationCompletedEventType, cmd.BatchID, domain.BatchValuationCompletedEvent{
			BatchID:       cmd.BatchID,
			Symbols:       extractSymbols(cmd.Requests),
			TotalRequests: len(cmd.Requests),
			SuccessCount:  out.SuccessCount,
			FailureCount:  out.FailureCount,
			CompletedAt:   time.Now().Unix(),
			OccurredOn:    time.Now(),
		})
	}
	return out, nil
}

// marshalDiagnostics 序列化引擎诊断信息。
func marshalDiagnostics(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// 辅助函数：提取请求中的标的代码（去重）
func extractSymbols(requests []ValuationCommand) []string {
	symbols := make([]string, 0, len(requests))
	seen := make(map[string]bool)
	for _, req := range requests {
		if !seen[req.Symbol] {
			symbols = append(symbols, req.Symbol)
			seen[req.Symbol] = true
		}
	}
	return symbols
}
