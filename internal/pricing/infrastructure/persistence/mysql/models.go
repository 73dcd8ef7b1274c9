package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// ValuationResultModel 估值结果数据库模型
type ValuationResultModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	ValuationID  string    `gorm:"column:valuation_id;type:varchar(64);uniqueIndex;not null"`
	Symbol       string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	OptionClass  string    `gorm:"column:option_class;type:varchar(16);not null"`
	OptionRight  string    `gorm:"column:option_right;type:varchar(8);not null"`
	Method       string    `gorm:"column:method;type:varchar(8);not null"`
	Price        string    `gorm:"column:price;type:decimal(32,18);not null"`
	Spot         string    `gorm:"column:spot;type:decimal(32,18);not null"`
	Strike       string    `gorm:"column:strike;type:decimal(32,18);not null"`
	Delta        string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma        string    `gorm:"column:gamma;type:decimal(32,18)"`
	Theta        string    `gorm:"column:theta;type:decimal(32,18)"`
	Vega         string    `gorm:"column:vega;type:decimal(32,18)"`
	Rho          string    `gorm:"column:rho;type:decimal(32,18)"`
	Diagnostics  string    `gorm:"column:diagnostics;type:text"`
	CalculatedAt int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
}

func (ValuationResultModel) TableName() string { return "valuation_results" }

// mapping helpers

func toValuationModel(res *domain.ValuationResult) *ValuationResultModel {
	if res == nil {
		return nil
	}
	return &ValuationResultModel{
		ID:           res.ID,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
		ValuationID:  res.ValuationID,
		Symbol:       res.Symbol,
		OptionClass:  res.OptionClass,
		OptionRight:  string(res.Right),
		Method:       string(res.Method),
		Price:        res.Price.String(),
		Spot:         res.Spot.String(),
		Strike:       res.Strike.String(),
		Delta:        res.Delta.String(),
		Gamma:        res.Gamma.String(),
		Theta:        res.Theta.String(),
		Vega:         res.Vega.String(),
		Rho:          res.Rho.String(),
		Diagnostics:  res.Diagnostics,
		CalculatedAt: res.CalculatedAt,
	}
}

func toValuation(m *ValuationResultModel) *domain.ValuationResult {
	if m == nil {
		return nil
	}
	price, _ := decimal.NewFromString(m.Price)
	spot, _ := decimal.NewFromString(m.Spot)
	strike, _ := decimal.NewFromString(m.Strike)
	delta, _ := decimal.NewFromString(m.Delta)
	gamma, _ := decimal.NewFromString(m.Gamma)
	theta, _ := decimal.NewFromString(m.Theta)
	vega, _ := decimal.NewFromString(m.Vega)
	rho, _ := decimal.NewFromString(m.Rho)

	return &domain.ValuationResult{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		ValuationID:  m.ValuationID,
		Symbol:       m.Symbol,
		OptionClass:  m.OptionClass,
		Right:        domain.OptionRight(m.OptionRight),
		Method:       domain.Method(m.Method),
		Price:        price,
		Spot:         spot,
		Strike:       strike,
		Delta:        delta,
		Gamma:        gamma,
		Theta:        theta,
		Vega:         vega,
		Rho:          rho,
		Diagnostics:  m.Diagnostics,
		CalculatedAt: m.CalculatedAt,
	}
}
