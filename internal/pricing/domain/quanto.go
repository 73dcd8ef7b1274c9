package domain

// QuantoAdjustedYield 计算 quanto 品种在计价货币度量下的合成股息率 q'。
// 标的以外币计价、收益以本币结算时，测度变换给标的漂移引入 ρ*σ*σ_fx 的修正项；
// 把修正后的漂移折算回 "外币利率减股息率" 的形式，剩下的残差就是合成股息率：
//
//	q' = r_f - (r - q + ρ*σ*σ_fx)
//
// 返回值可直接作为单币种定价引擎（二叉树、LSM）的股息率输入。
func QuantoAdjustedYield(correlation, vol, fxVol, domesticRate, dividendYield, foreignRate float64) float64 {
	growthAdj := correlation * vol * fxVol
	domesticDrift := domesticRate - dividendYield
	foreignDrift := domesticDrift + growthAdj
	return foreignRate - foreignDrift
}
