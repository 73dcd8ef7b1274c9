// 包 定价服务的领域模型：远期启动与 quanto 期权的数值定价引擎。
package domain

import (
	"fmt"
	"strings"
)

// OptionRight 期权方向
type OptionRight string

const (
	RightCall OptionRight = "CALL" // 看涨期权
	RightPut  OptionRight = "PUT"  // 看跌期权
)

// ParseOptionRight 解析期权方向，大小写不敏感。
func ParseOptionRight(s string) (OptionRight, error) {
	switch OptionRight(strings.ToUpper(s)) {
	case RightCall:
		return RightCall, nil
	case RightPut:
		return RightPut, nil
	default:
		return "", fmt.Errorf("%w: right must be CALL or PUT, got %q", ErrValidation, s)
	}
}

// sign 看涨为 +1，看跌为 -1。
func (r OptionRight) sign() float64 {
	if r == RightPut {
		return -1
	}
	return 1
}

// Method 定价方法，封闭集合。
type Method string

const (
	MethodBS Method = "BS" // 闭式解
	MethodLT Method = "LT" // 二叉树
	MethodMC Method = "MC" // 蒙特卡洛 (LSM)
	MethodFD Method = "FD" // 有限差分
)

// ParseMethod 解析定价方法；集合之外的输入按不支持的方法拒绝。
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	switch m {
	case MethodBS, MethodLT, MethodMC, MethodFD:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown pricing method %q", ErrUnsupportedMethod, s)
	}
}

// OptionClass 期权品种标签，用于结果记录与事件。
const (
	ClassForwardStart = "FORWARD_START"
	ClassQuanto       = "QUANTO"
)

// Greeks 希腊字母
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}
