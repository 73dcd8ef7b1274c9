package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	algorithm "github.com/wyfcoding/pkg/algorithm/math"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultRegressionDegree LSM 回归多项式的默认阶数。
const DefaultRegressionDegree = 5

// MCConfig Longstaff-Schwartz 模拟配置
type MCConfig struct {
	Steps       int    // 时间步数
	Paths       int    // 模拟路径数
	Seed        uint64 // 随机数种子，同种子同参数结果逐位一致
	Degree      int    // 回归多项式阶数，<=0 时取 DefaultRegressionDegree
	ITMFilter   bool   // 仅用价内路径做回归（经典 LSM 变体），默认全样本
	KeepHistory bool   // 保留模拟价格网格用于诊断
}

// MCResult 蒙特卡洛定价结果
type MCResult struct {
	Price   float64     `json:"price"`
	StdErr  float64     `json:"std_err"` // 路径均值的标准误
	Yield   float64     `json:"yield"`   // 合成股息率 q'
	Steps   int         `json:"steps"`
	Paths   int         `json:"paths"`
	Degree  int         `json:"degree"`
	Seed    uint64      `json:"seed"`
	History [][]float64 `json:"-"` // (Steps+1) x Paths 价格网格，仅在 KeepHistory 时填充
}

// PriceQuantoMC quanto 期权的 Longstaff-Schwartz 蒙特卡洛定价。
// 标的在合成股息率 q' 的单币种测度下模拟，贴现用结算货币利率；
// 行权边界由逐期的多项式回归持有价值估计，支持美式提前行权。
func PriceQuantoMC(c OptionContract, cfg MCConfig) (*MCResult, error) {
	// 1. 参数校验与 quanto 漂移调整
	c = c.withDefaultStrike()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if cfg.Steps < 1 {
		return nil, fmt.Errorf("%w: simulation steps must be >= 1, got %d", ErrValidation, cfg.Steps)
	}
	if cfg.Paths < 1 {
		return nil, fmt.Errorf("%w: simulation paths must be >= 1, got %d", ErrValidation, cfg.Paths)
	}
	degree := cfg.Degree
	if degree <= 0 {
		degree = DefaultRegressionDegree
	}

	yield := QuantoAdjustedYield(c.Correlation, c.Vol, c.FXVol, c.DomesticRate, c.DividendYield, c.ForeignRate)
	dt := c.Maturity / float64(cfg.Steps)
	df := math.Exp(-c.ForeignRate * dt)
	sign := c.Right.sign()

	// 2. 模拟价格网格
	// 每次调用独享一个确定性种子的生成器，单步对数收益 ~ N((r_f-q'-sigma^2/2)*dt, sigma*sqrt(dt))
	normal := distuv.Normal{
		Mu:    (c.ForeignRate - yield - 0.5*c.Vol*c.Vol) * dt,
		Sigma: c.Vol * math.Sqrt(dt),
		Src:   rand.NewSource(cfg.Seed),
	}

	grid := make([][]float64, cfg.Steps+1)
	grid[0] = make([]float64, cfg.Paths)
	for p := range grid[0] {
		grid[0][p] = c.Spot
	}
	logReturn := make([]float64, cfg.Paths)
	for t := 1; t <= cfg.Steps; t++ {
		row := make([]float64, cfg.Paths)
		for p := 0; p < cfg.Paths; p++ {
			logReturn[p] += normal.Rand()
			row[p] = c.Spot * math.Exp(logReturn[p])
		}
		grid[t] = row
	}

	// 3. 全网格内在价值
	payout := make([][]float64, cfg.Steps+1)
	for t := range grid {
		pt := make([]float64, cfg.Paths)
		for p, s := range grid[t] {
			pt[p] = math.Max(sign*(s-c.Strike), 0)
		}
		payout[t] = pt
	}

	// 4. LSM 逐期回溯：回归估计持有价值，和立即行权价值比较
	value := make([]float64, cfg.Paths)
	copy(value, payout[cfg.Steps])
	discounted := make([]float64, cfg.Paths)
	for t := cfg.Steps - 1; t >= 1; t-- {
		for p := range value {
			discounted[p] = value[p] * df
		}

		fitX, fitY := grid[t], discounted
		if cfg.ITMFilter {
			fitX, fitY = itmSample(grid[t], payout[t], discounted)
			if len(fitX) == 0 {
				copy(value, discounted)
				continue
			}
		}
		reg, err := fitPolynomial(fitX, fitY, degree)
		if err != nil {
			return nil, err
		}

		for p := 0; p < cfg.Paths; p++ {
			exercise := payout[t][p] > reg.valueAt(grid[t][p])
			if cfg.ITMFilter {
				exercise = exercise && payout[t][p] > 0
			}
			if exercise {
				value[p] = payout[t][p]
			} else {
				value[p] = discounted[p]
			}
		}
	}
	for p := range value {
		value[p] *= df
	}

	// 5. 统计量
	price, err := stats.Mean(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumerical, err)
	}
	var stdErr float64
	if cfg.Paths > 1 {
		sd, err := stats.StandardDeviationSample(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNumerical, err)
		}
		stdErr = sd / math.Sqrt(float64(cfg.Paths))
	}

	res := &MCResult{
		Price:  price,
		StdErr: stdErr,
		Yield:  yield,
		Steps:  cfg.Steps,
		Paths:  cfg.Paths,
		Degree: degree,
		Seed:   cfg.Seed,
	}
	if cfg.KeepHistory {
		res.History = grid
	}
	return res, nil
}

// itmSample 取出价内路径构成回归样本。
func itmSample(spots, payout, discounted []float64) ([]float64, []float64) {
	var xs, ys []float64
	for p := range spots {
		if payout[p] > 0 {
			xs = append(xs, spots[p])
			ys = append(ys, discounted[p])
		}
	}
	return xs, ys
}

// polyRegression 一元多项式回归，自变量标准化后再拟合，避免高阶幂的病态。
type polyRegression struct {
	mean  float64
	scale float64
	coef  []float64 // coef[k] 是标准化变量 k 次项系数
}

// fitPolynomial 最小二乘拟合 degree 阶多项式。
// 法方程是对称正定的 Gram 矩阵，用 Cholesky 分解求解；
// 样本退化（零方差、样本不足）时矩阵不正定，按数值错误上报。
func fitPolynomial(xs, ys []float64, degree int) (*polyRegression, error) {
	n := len(xs)
	mean, err := stats.Mean(xs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumerical, err)
	}
	scale, err := stats.StandardDeviationPopulation(xs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumerical, err)
	}
	if scale == 0 {
		return nil, fmt.Errorf("%w: regression sample has zero variance", ErrNumerical)
	}

	z := make([]float64, n)
	for i, x := range xs {
		z[i] = (x - mean) / scale
	}

	// Gram 矩阵由幂和填充：G[i][j] = sum(z^(i+j))，右端 b[i] = sum(y*z^i)
	m := degree + 1
	powerSums := make([]float64, 2*degree+1)
	rhs := make([]float64, m)
	for i := 0; i < n; i++ {
		pw := 1.0
		for k := 0; k <= 2*degree; k++ {
			powerSums[k] += pw
			if k < m {
				rhs[k] += ys[i] * pw
			}
			pw *= z[i]
		}
	}
	gram := algorithm.NewMatrix(m, m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			gram.Set(i, j, powerSums[i+j])
		}
	}

	coef, err := gram.SolveCholesky(rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: continuation fit: %w", ErrNumerical, err)
	}
	return &polyRegression{mean: mean, scale: scale, coef: coef}, nil
}

// valueAt 在原始坐标上求多项式值（Horner 格式）。
func (f *polyRegression) valueAt(x float64) float64 {
	z := (x - f.mean) / f.scale
	v := 0.0
	for k := len(f.coef) - 1; k >= 0; k-- {
		v = v*z + f.coef[k]
	}
	return v
}
