package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// ValuationCommand 估值命令，远期启动与 quanto 品种共用一张参数表。
type ValuationCommand struct {
	Symbol        string
	OptionClass   string // FORWARD_START / QUANTO
	Right         string
	Method        string
	Spot          float64 // 为 0 时通过市场数据客户端解析
	Strike        float64 // 为 0 时按平值处理
	Vol           float64
	Maturity      float64
	StartTime     float64
	DomesticRate  float64
	DividendYield float64
	ForeignRate   float64
	FXVol         float64
	Correlation   float64
	Steps         int    // 网格步数，缺省见各方法默认值
	Paths         int    // MC 路径数
	Seed          uint64 // MC 种子，0 表示取雪花 ID 自动播种
	Degree        int    // MC 回归阶数
	ITMFilter     bool   // MC 仅用价内路径回归
	KeepHistory   bool   // 保留引擎诊断信息
}

// BatchValuationCommand 批量估值命令
type BatchValuationCommand struct {
	BatchID  string
	Requests []ValuationCommand
	BaseSeed uint64 // 非 0 时，第 i 个未显式播种的请求用 BaseSeed+i
	Parallel int    // 并发度，<=0 取默认值
}

// BatchValuationResult 批量估值结果
type BatchValuationResult struct {
	BatchID      string
	Results      []*domain.ValuationResult
	SuccessCount int
	FailureCount int
	Errors       []string
}

// ValuationDTO 估值结果 DTO
type ValuationDTO struct {
	ValuationID  string `json:"valuation_id"`
	Symbol       string `json:"symbol"`
	OptionClass  string `json:"option_class"`
	Right        string `json:"right"`
	Method       string `json:"method"`
	Price        string `json:"price"`
	Spot         string `json:"spot"`
	Strike       string `json:"strike"`
	Delta        string `json:"delta"`
	Gamma        string `json:"gamma"`
	Theta        string `json:"theta"`
	Vega         string `json:"vega"`
	Rho          string `json:"rho"`
	Diagnostics  string `json:"diagnostics,omitempty"`
	CalculatedAt int64  `json:"calculated_at"`
}

func toValuationDTO(r *domain.ValuationResult) *ValuationDTO {
	if r == nil {
		return nil
	}
	return &ValuationDTO{
		ValuationID:  r.ValuationID,
		Symbol:       r.Symbol,
		OptionClass:  r.OptionClass,
		Right:        string(r.Right),
		Method:       string(r.Method),
		Price:        r.Price.String(),
		Spot:         r.Spot.String(),
		Strike:       r.Strike.String(),
		Delta:        r.Delta.String(),
		Gamma:        r.Gamma.String(),
		Theta:        r.Theta.String(),
		Vega:         r.Vega.String(),
		Rho:          r.Rho.String(),
		Diagnostics:  r.Diagnostics,
		CalculatedAt: r.CalculatedAt,
	}
}

func toValuationDTOs(results []*domain.ValuationResult) []*ValuationDTO {
	dtos := make([]*ValuationDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, toValuationDTO(r))
	}
	return dtos
}
