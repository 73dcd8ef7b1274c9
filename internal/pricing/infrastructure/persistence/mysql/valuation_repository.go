package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type valuationRepository struct {
	db *gorm.DB
}

// NewValuationRepository 创建并返回一个新的 valuationRepository 实例。
func NewValuationRepository(db *gorm.DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

// WithTx 在单个事务中执行 fn，事务对象通过 contextx 下传给同仓储的后续调用。
func (r *valuationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *valuationRepository) SaveValuation(ctx context.Context, res *domain.ValuationResult) error {
	model := toValuationModel(res)
	if model == nil {
		return nil
	}
	db := r.getDB(ctx).WithContext(ctx)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		res.ID = model.ID
		res.CreatedAt = model.CreatedAt
		res.UpdatedAt = model.UpdatedAt
		return nil
	}
	return db.Model(&ValuationResultModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"symbol":        model.Symbol,
			"option_class":  model.OptionClass,
			"option_right":  model.OptionRight,
			"method":        model.Method,
			"price":         model.Price,
			"spot":          model.Spot,
			"strike":        model.Strike,
			"delta":         model.Delta,
			"gamma":         model.Gamma,
			"theta":         model.Theta,
			"vega":          model.Vega,
			"rho":           model.Rho,
			"diagnostics":   model.Diagnostics,
			"calculated_at": model.CalculatedAt,
			"updated_at":    time.Now(),
		}).Error
}

func (r *valuationRepository) GetLatestValuation(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	var m ValuationResultModel
	if err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toValuation(&m), nil
}

func (r *valuationRepository) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*domain.ValuationResult, error) {
	var models []ValuationResultModel
	if err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.ValuationResult, len(models))
	for i := range models {
		res[i] = toValuation(&models[i])
	}
	return res, nil
}

func (r *valuationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
