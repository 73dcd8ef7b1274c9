package domain

import (
	"fmt"
	"math"
)

// LatticeParams 二叉树引擎的 CRR 参数，KeepHistory 打开时随结果返回，便于诊断核对。
type LatticeParams struct {
	Steps      int     `json:"steps"`
	DT         float64 `json:"dt"`          // 单步时长
	U          float64 `json:"u"`           // 上行乘子
	D          float64 `json:"d"`           // 下行乘子
	A          float64 `json:"a"`           // 单步增长因子 exp((r-q')*dt)
	P          float64 `json:"p"`           // 风险中性上行概率
	DFStep     float64 `json:"df_step"`     // 单步贴现因子
	DFMaturity float64 `json:"df_maturity"` // 整段贴现因子
}

// LatticeResult 二叉树定价结果
type LatticeResult struct {
	Price  float64        `json:"price"`
	Yield  float64        `json:"yield"`            // 合成股息率 q'
	Params *LatticeParams `json:"params,omitempty"` // 仅在保留诊断信息时填充
}

// PriceQuantoLattice quanto 期权的二叉树定价。
// 先做 quanto 漂移调整得到合成股息率 q'，再把合成标的交给单币种美式 CRR 引擎，
// 贴现利率用结算货币（外币）利率。keepHistory 只决定是否附带引擎参数，不影响价格。
func PriceQuantoLattice(c OptionContract, steps int, keepHistory bool) (*LatticeResult, error) {
	c = c.withDefaultStrike()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: lattice steps must be >= 1, got %d", ErrValidation, steps)
	}

	yield := QuantoAdjustedYield(c.Correlation, c.Vol, c.FXVol, c.DomesticRate, c.DividendYield, c.ForeignRate)
	price, params := americanBinomial(c.Spot, c.Strike, c.Maturity, c.ForeignRate, yield, c.Vol, steps, c.Right)

	res := &LatticeResult{Price: price, Yield: yield}
	if keepHistory {
		res.Params = &params
	}
	return res, nil
}

// americanBinomial 美式期权 CRR 二叉树引擎（Cox-Ross-Rubinstein 参数化）。
// 终端层取内在价值，逐层向根回溯，每个节点都和立即行权价值取较大者。
func americanBinomial(spot, strike, maturity, rate, yield, vol float64, steps int, right OptionRight) (float64, LatticeParams) {
	dt := maturity / float64(steps)
	u := math.Exp(vol * math.Sqrt(dt))
	d := 1 / u
	a := math.Exp((rate - yield) * dt)
	p := (a - d) / (u - d)
	dfStep := math.Exp(-rate * dt)
	sign := right.sign()

	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		sT := spot * math.Pow(u, float64(j)) * math.Pow(d, float64(steps-j))
		values[j] = math.Max(sign*(sT-strike), 0)
	}

	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			cont := dfStep * (p*values[j+1] + (1-p)*values[j])
			sNode := spot * math.Pow(u, float64(j)) * math.Pow(d, float64(i-j))
			values[j] = math.Max(cont, math.Max(sign*(sNode-strike), 0))
		}
	}

	return values[0], LatticeParams{
		Steps:      steps,
		DT:         dt,
		U:          u,
		D:          d,
		A:          a,
		P:          p,
		DFStep:     dfStep,
		DFMaturity: math.Exp(-rate * maturity),
	}
}
