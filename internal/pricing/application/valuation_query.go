package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// 历史查询的默认返回条数。
const defaultHistoryLimit = 20

// ValuationQueryService 处理所有估值相关的查询操作（Queries）。
type ValuationQueryService struct {
	repo  domain.ValuationRepository
	cache domain.ValuationCache
}

// NewValuationQueryService 构造函数。
func NewValuationQueryService(repo domain.ValuationRepository, cache domain.ValuationCache) *ValuationQueryService {
	return &ValuationQueryService{
		repo:  repo,
		cache: cache,
	}
}

// GetLatestValuation 获取标的最新估值结果（优先缓存）
func (s *ValuationQueryService) GetLatestValuation(ctx context.Context, symbol string) (*ValuationDTO, error) {
	// 尝试从缓存获取
	if s.cache != nil {
		if cached, err := s.cache.GetLatest(ctx, symbol); err == nil && cached != nil {
			return toValuationDTO(cached), nil
		}
	}

	// 从主库获取
	result, err := s.repo.GetLatestValuation(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: symbol %s", domain.ErrValuationNotFound, symbol)
	}

	// 回填缓存
	if s.cache != nil {
		_ = s.cache.SaveLatest(ctx, result)
	}
	return toValuationDTO(result), nil
}

// GetValuationHistory 获取标的估值历史，按计算时间倒序（历史不设缓存，实时从库获取）
func (s *ValuationQueryService) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*ValuationDTO, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	results, err := s.repo.GetValuationHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	return toValuationDTOs(results), nil
}
