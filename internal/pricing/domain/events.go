package domain

import "time"

const (
	ValuationCompletedEventType      = "pricing.valuation.completed"
	ValuationRequestedEventType      = "pricing.valuation.requested"
	ValuationFailedEventType         = "pricing.valuation.failed"
	BatchValuationCompletedEventType = "pricing.valuation.batch.completed"
)

// ValuationCompletedEvent 估值完成事件
type ValuationCompletedEvent struct {
	ValuationID  string    `json:"valuation_id"`
	Symbol       string    `json:"symbol"`
	OptionClass  string    `json:"option_class"`
	Right        string    `json:"right"`
	Method       string    `json:"method"`
	Price        float64   `json:"price"`
	Spot         float64   `json:"spot"`
	Strike       float64   `json:"strike"`
	CalculatedAt int64     `json:"calculated_at"`
	OccurredOn   time.Time `json:"occurred_on"`
}

// ValuationRequestedEvent 估值请求事件，供异步消费链路投递定价任务。
type ValuationRequestedEvent struct {
	RequestID     string    `json:"request_id"`
	Symbol        string    `json:"symbol"`
	OptionClass   string    `json:"option_class"`
	Right         string    `json:"right"`
	Method        string    `json:"method"`
	Spot          float64   `json:"spot"`
	Strike        float64   `json:"strike"`
	Vol           float64   `json:"vol"`
	Maturity      float64   `json:"maturity"`
	StartTime     float64   `json:"start_time"`
	DomesticRate  float64   `json:"domestic_rate"`
	DividendYield float64   `json:"dividend_yield"`
	ForeignRate   float64   `json:"foreign_rate"`
	FXVol         float64   `json:"fx_vol"`
	Correlation   float64   `json:"correlation"`
	Steps         int       `json:"steps"`
	Paths         int       `json:"paths"`
	Seed          uint64    `json:"seed"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// ValuationFailedEvent 估值失败事件
type ValuationFailedEvent struct {
	RequestID   string    `json:"request_id"`
	Symbol      string    `json:"symbol"`
	OptionClass string    `json:"option_class"`
	Method      string    `json:"method"`
	Error       string    `json:"error"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// BatchValuationCompletedEvent 批量估值完成事件
type BatchValuationCompletedEvent struct {
	BatchID       string    `json:"batch_id"`
	Symbols       []string  `json:"symbols"`
	TotalRequests int       `json:"total_requests"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
	CompletedAt   int64     `json:"completed_at"`
	OccurredOn    time.Time `json:"occurred_on"`
}
