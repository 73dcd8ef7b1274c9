package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/messagequeue"
)

// ValuationRequestHandler 消费异步估值请求，复用与 HTTP 入口相同的命令链路。
type ValuationRequestHandler struct {
	service   *application.PricingService
	publisher messagequeue.EventPublisher
	logger    *slog.Logger
}

func NewValuationRequestHandler(service *application.PricingService, publisher messagequeue.EventPublisher, logger *slog.Logger) *ValuationRequestHandler {
	return &ValuationRequestHandler{service: service, publisher: publisher, logger: logger}
}

func (h *ValuationRequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event domain.ValuationRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal valuation request", "error", err)
		return err
	}

	cmd := application.ValuationCommand{
		Symbol:        event.Symbol,
		OptionClass:   event.OptionClass,
		Right:         event.Right,
		Method:        event.Method,
		Spot:          event.Spot,
		Strike:        event.Strike,
		Vol:           event.Vol,
		Maturity:      event.Maturity,
		StartTime:     event.StartTime,
		DomesticRate:  event.DomesticRate,
		DividendYield: event.DividendYield,
		ForeignRate:   event.ForeignRate,
		FXVol:         event.FXVol,
		Correlation:   event.Correlation,
		Steps:         event.Steps,
		Paths:         event.Paths,
		Seed:          event.Seed,
	}

	result, err := h.service.Valuate(ctx, cmd)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrUnsupportedMethod) || errors.Is(err, domain.ErrNumerical) {
			// 参数或数值错误重投也不会成功，发布失败事件后提交位点。
			h.logger.ErrorContext(ctx, "valuation request rejected",
				"request_id", event.RequestID, "symbol", event.Symbol, "error", err)
			h.publishFailure(ctx, event, err)
			return nil
		}
		return err
	}

	h.logger.InfoContext(ctx, "async valuation completed",
		"request_id", event.RequestID, "valuation_id", result.ValuationID, "symbol", event.Symbol)
	return nil
}

func (h *ValuationRequestHandler) publishFailure(ctx context.Context, event domain.ValuationRequestedEvent, cause error) {
	if h.publisher == nil {
		return
	}
	failed := domain.ValuationFailedEvent{
		RequestID:   event.RequestID,
		Symbol:      event.Symbol,
		OptionClass: event.OptionClass,
		Method:      event.Method,
		Error:       cause.Error(),
		OccurredOn:  time.Now(),
	}
	if err := h.publisher.Publish(ctx, domain.ValuationFailedEventType, event.Symbol, failed); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish valuation failure", "request_id", event.RequestID, "error", err)
	}
}
