package domain

import "errors"

// 定价领域错误
var (
	ErrValidation        = errors.New("invalid contract parameter")  // 合约参数非法
	ErrNumerical         = errors.New("numerical failure")           // 数值计算失败（回归退化等）
	ErrUnsupportedMethod = errors.New("unsupported pricing method")  // 品种不支持该定价方法
	ErrValuationNotFound = errors.New("valuation result not found")  // 估值结果不存在
)
