package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationResult 估值结果实体
// 引擎内部用 float64 计算，入库前统一转成 decimal 避免序列化精度漂移。
type ValuationResult struct {
	ID           uint            `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ValuationID  string          `json:"valuation_id"` // 全局唯一估值编号
	Symbol       string          `json:"symbol"`
	OptionClass  string          `json:"option_class"` // FORWARD_START / QUANTO
	Right        OptionRight     `json:"right"`
	Method       Method          `json:"method"`
	Price        decimal.Decimal `json:"price"`
	Spot         decimal.Decimal `json:"spot"`
	Strike       decimal.Decimal `json:"strike"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	Vega         decimal.Decimal `json:"vega"`
	Rho          decimal.Decimal `json:"rho"`
	Diagnostics  string          `json:"diagnostics,omitempty"` // 引擎诊断信息 (JSON)
	CalculatedAt int64           `json:"calculated_at"`
}
