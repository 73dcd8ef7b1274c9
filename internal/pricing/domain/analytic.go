package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// AnalyticResult 闭式解定价结果，价格与希腊字母一并返回。
type AnalyticResult struct {
	Price  float64
	Greeks Greeks
}

// PriceForwardStartAnalytic 远期启动期权的闭式解定价。
// 行权价在 T_s 时点按届时现货比例重置，风险中性下该品种等价于
// 一张 T 期限的 Black-Scholes 期权再乘上 exp(-q*T_s) 的启动期折算因子。
// 希腊字母是对折算后价值求偏导得到的，启动期折算因子视为常数。
func PriceForwardStartAnalytic(c OptionContract) (*AnalyticResult, error) {
	c = c.withDefaultStrike()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sqrtT := math.Sqrt(c.Maturity)
	d1 := (math.Log(c.Spot/c.Strike) + (c.DomesticRate-c.DividendYield+0.5*c.Vol*c.Vol)*c.Maturity) / (c.Vol * sqrtT)
	d2 := d1 - c.Vol*sqrtT

	startDF := math.Exp(-c.DividendYield * c.StartTime)
	divDF := math.Exp(-c.DividendYield * c.Maturity)
	rateDF := math.Exp(-c.DomesticRate * c.Maturity)

	var price, delta, theta, rho float64
	if c.Right == RightCall {
		price = startDF * (c.Spot*divDF*normCdf(d1) - c.Strike*rateDF*normCdf(d2))
		delta = startDF * divDF * normCdf(d1)
		theta = startDF * (-c.Spot*c.Vol*divDF*normPdf(d1)/(2*sqrtT) -
			c.DomesticRate*c.Strike*rateDF*normCdf(d2) +
			c.DividendYield*c.Spot*divDF*normCdf(d1))
		rho = startDF * c.Strike * c.Maturity * rateDF * normCdf(d2)
	} else {
		price = startDF * (c.Strike*rateDF*normCdf(-d2) - c.Spot*divDF*normCdf(-d1))
		delta = startDF * divDF * (normCdf(d1) - 1)
		theta = startDF * (-c.Spot*c.Vol*divDF*normPdf(d1)/(2*sqrtT) +
			c.DomesticRate*c.Strike*rateDF*normCdf(-d2) -
			c.DividendYield*c.Spot*divDF*normCdf(-d1))
		rho = -startDF * c.Strike * c.Maturity * rateDF * normCdf(-d2)
	}

	var gamma float64
	if denom := c.Spot * c.Vol * sqrtT; denom > 0 {
		gamma = startDF * divDF * normPdf(d1) / denom
	}
	vega := startDF * c.Spot * divDF * normPdf(d1) * sqrtT

	return &AnalyticResult{
		Price: price,
		Greeks: Greeks{
			Delta: delta,
			Gamma: gamma,
			Theta: theta,
			Vega:  vega,
			Rho:   rho,
		},
	}, nil
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// normCdf 标准正态分布函数
func normCdf(x float64) float64 {
	return stdNormal.CDF(x)
}

// normPdf 标准正态密度函数
func normPdf(x float64) float64 {
	return stdNormal.Prob(x)
}
