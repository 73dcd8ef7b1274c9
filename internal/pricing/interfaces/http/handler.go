package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// PricingHandler 负责处理与期权估值相关的 HTTP 请求
type PricingHandler struct {
	service *application.PricingService
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(service *application.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	v1 := router.Group("/v1/pricing")
	{
		v1.POST("/forward-start", h.PriceForwardStart)
		v1.POST("/quanto", h.PriceQuanto)
		v1.POST("/quanto/batch", h.BatchPriceQuanto)
		v1.GET("/results/:symbol/latest", h.GetLatestValuation)
		v1.GET("/results/:symbol/history", h.GetValuationHistory)
	}
}

// ValuationRequest 估值请求
// spot 缺省时由行情解析，strike 缺省时按平值处理。
type ValuationRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	Right       string  `json:"right" binding:"required"`
	Method      string  `json:"method" binding:"required"`
	Spot        float64 `json:"spot"`
	Strike      float64 `json:"strike"`
	Vol         float64 `json:"vol"`
	Maturity    float64 `json:"maturity" binding:"required"`
	StartTime   float64 `json:"start_time"`
	Rate        float64 `json:"rate"`
	DivYield    float64 `json:"div_yield"`
	ForeignRate float64 `json:"foreign_rate"`
	VolFX       float64 `json:"vol_fx"`
	Correlation float64 `json:"correlation"`
	Steps       int     `json:"steps"`
	Paths       int     `json:"paths"`
	Seed        uint64  `json:"seed"`
	Degree      int     `json:"degree"`
	ITMFilter   bool    `json:"itm_filter"`
	KeepHistory bool    `json:"keep_history"`
}

// BatchValuationRequest 批量估值请求
type BatchValuationRequest struct {
	BatchID  string             `json:"batch_id"`
	Requests []ValuationRequest `json:"requests" binding:"required,min=1"`
	BaseSeed uint64             `json:"base_seed"`
	Parallel int                `json:"parallel"`
}

func (r ValuationRequest) toCommand() application.ValuationCommand {
	return application.ValuationCommand{
		Symbol:        r.Symbol,
		Right:         r.Right,
		Method:        r.Method,
		Spot:          r.Spot,
		Strike:        r.Strike,
		Vol:           r.Vol,
		Maturity:      r.Maturity,
		StartTime:     r.StartTime,
		DomesticRate:  r.Rate,
		DividendYield: r.DivYield,
		ForeignRate:   r.ForeignRate,
		FXVol:         r.VolFX,
		Correlation:   r.Correlation,
		Steps:         r.Steps,
		Paths:         r.Paths,
		Seed:          r.Seed,
		Degree:        r.Degree,
		ITMFilter:     r.ITMFilter,
		KeepHistory:   r.KeepHistory,
	}
}

// PriceForwardStart 远期启动期权估值
func (h *PricingHandler) PriceForwardStart(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.PriceForwardStart(c.Request.Context(), req.toCommand())
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to price forward start option", "symbol", req.Symbol, "error", err)
		respondValuationError(c, err)
		return
	}
	response.Success(c, result)
}

// PriceQuanto quanto 期权估值
func (h *PricingHandler) PriceQuanto(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.service.PriceQuanto(c.Request.Context(), req.toCommand())
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to price quanto option", "symbol", req.Symbol, "error", err)
		respondValuationError(c, err)
		return
	}
	response.Success(c, result)
}

// BatchPriceQuanto 批量 quanto 期权估值
func (h *PricingHandler) BatchPriceQuanto(c *gin.Context) {
	var req BatchValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.BatchValuationCommand{
		BatchID:  req.BatchID,
		BaseSeed: req.BaseSeed,
		Parallel: req.Parallel,
		Requests: make([]application.ValuationCommand, 0, len(req.Requests)),
	}
	for _, item := range req.Requests {
		itemCmd := item.toCommand()
		itemCmd.OptionClass = domain.ClassQuanto
		cmd.Requests = append(cmd.Requests, itemCmd)
	}

	result, err := h.service.BatchValuate(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to run batch valuation", "batch_id", req.BatchID, "error", err)
		respondValuationError(c, err)
		return
	}
	response.Success(c, result)
}

// GetLatestValuation 获取标的最新估值结果
func (h *PricingHandler) GetLatestValuation(c *gin.Context) {
	symbol := c.Param("symbol")
	dto, err := h.service.GetLatestValuation(c.Request.Context(), symbol)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get latest valuation", "symbol", symbol, "error", err)
		respondValuationError(c, err)
		return
	}
	response.Success(c, dto)
}

// GetValuationHistory 获取标的估值历史
func (h *PricingHandler) GetValuationHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	dtos, err := h.service.GetValuationHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get valuation history", "symbol", symbol, "error", err)
		respondValuationError(c, err)
		return
	}
	response.Success(c, dtos)
}

// respondValuationError 将领域错误映射为 HTTP 状态码。
func respondValuationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedMethod):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrNumerical):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
	case errors.Is(err, domain.ErrValuationNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}
