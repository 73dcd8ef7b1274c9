// 包 定价服务的用例逻辑、DTO 与事务边界
package application

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/messagequeue"
)

// PricingService 定价服务门面，整合命令服务和查询服务
type PricingService struct {
	commandService *ValuationCommandService
	queryService   *ValuationQueryService
}

// NewPricingService 创建定价服务门面实例
func NewPricingService(
	repo domain.ValuationRepository,
	cache domain.ValuationCache,
	market domain.MarketDataClient,
	publisher messagequeue.EventPublisher,
) *PricingService {
	return &PricingService{
		commandService: NewValuationCommandService(repo, cache, market, publisher),
		queryService:   NewValuationQueryService(repo, cache),
	}
}

// PriceForwardStart 远期启动期权估值
func (s *PricingService) PriceForwardStart(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	return s.commandService.PriceForwardStart(ctx, cmd)
}

// PriceQuanto quanto 期权估值
func (s *PricingService) PriceQuanto(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	return s.commandService.PriceQuanto(ctx, cmd)
}

// Valuate 通用估值入口，品种由命令指定
func (s *PricingService) Valuate(ctx context.Context, cmd ValuationCommand) (*domain.ValuationResult, error) {
	return s.commandService.Valuate(ctx, cmd)
}

// BatchValuate 批量估值
func (s *PricingService) BatchValuate(ctx context.Context, cmd BatchValuationCommand) (*BatchValuationResult, error) {
	return s.commandService.BatchValuate(ctx, cmd)
}

// GetLatestValuation 获取标的最新估值结果
func (s *PricingService) GetLatestValuation(ctx context.Context, symbol string) (*ValuationDTO, error) {
	return s.queryService.GetLatestValuation(ctx, symbol)
}

// GetValuationHistory 获取标的估值历史
func (s *PricingService) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*ValuationDTO, error) {
	return s.queryService.GetValuationHistory(ctx, symbol, limit)
}
