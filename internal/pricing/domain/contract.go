package domain

import "fmt"

// OptionContract 期权合约参数
// 远期启动与 quanto 两类品种共用一张参数表，quanto 专属字段对远期启动品种置零即可。
type OptionContract struct {
	Symbol        string      // 标的资产代码
	Right         OptionRight // 期权方向 (CALL/PUT)
	Spot          float64     // 当前现货价 S0
	Strike        float64     // 行权价 K，为 0 时取现货价（平值发行惯例）
	Vol           float64     // 标的年化波动率 σ
	Maturity      float64     // 到期期限 T（年）
	StartTime     float64     // 远期启动时点 T_s（年），即期品种为 0
	DomesticRate  float64     // 本币无风险利率 r
	DividendYield float64     // 标的股息率 q
	ForeignRate   float64     // 外币无风险利率 r_f，quanto 品种的贴现利率
	FXVol         float64     // 汇率年化波动率 σ_fx
	Correlation   float64     // 标的与汇率的相关系数 ρ
}

// withDefaultStrike 行权价缺省时按平值处理。
func (c OptionContract) withDefaultStrike() OptionContract {
	if c.Strike == 0 {
		c.Strike = c.Spot
	}
	return c
}

// Validate 校验合约参数，任何一项非法都直接拒绝，不做静默修正。
func (c OptionContract) Validate() error {
	if c.Right != RightCall && c.Right != RightPut {
		return fmt.Errorf("%w: right must be CALL or PUT, got %q", ErrValidation, c.Right)
	}
	if c.Vol < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrValidation, c.Vol)
	}
	if c.Maturity <= 0 {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrValidation, c.Maturity)
	}
	if c.StartTime < 0 {
		return fmt.Errorf("%w: start time must be non-negative, got %v", ErrValidation, c.StartTime)
	}
	if c.Spot < 0 {
		return fmt.Errorf("%w: spot must be non-negative, got %v", ErrValidation, c.Spot)
	}
	if c.Strike < 0 {
		return fmt.Errorf("%w: strike must be non-negative, got %v", ErrValidation, c.Strike)
	}
	if c.DomesticRate < 0 {
		return fmt.Errorf("%w: domestic rate must be non-negative, got %v", ErrValidation, c.DomesticRate)
	}
	if c.DividendYield < 0 {
		return fmt.Errorf("%w: dividend yield must be non-negative, got %v", ErrValidation, c.DividendYield)
	}
	return nil
}
