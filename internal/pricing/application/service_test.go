package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// fakeValuationRepo keeps results in memory and runs transactions inline.
type fakeValuationRepo struct {
	mu      sync.Mutex
	saved   []*domain.ValuationResult
	saveErr error
}

func (f *fakeValuationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeValuationRepo) SaveValuation(ctx context.Context, result *domain.ValuationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, result)
	return nil
}

func (f *fakeValuationRepo) GetLatestValuation(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].Symbol == symbol {
			return f.saved[i], nil
		}
	}
	return nil, nil
}

func (f *fakeValuationRepo) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*domain.ValuationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.ValuationResult, 0, limit)
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if f.saved[i].Symbol == symbol {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

func (f *fakeValuationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	events []any
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, key)
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error {
	return f.Publish(ctx, topic, key, event)
}

// fakeCache is an in-memory ValuationCache.
type fakeCache struct {
	mu     sync.Mutex
	latest map[string]*domain.ValuationResult
	saves  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{latest: make(map[string]*domain.ValuationResult)}
}

func (f *fakeCache) SaveLatest(ctx context.Context, result *domain.ValuationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[result.Symbol] = result
	f.saves++
	return nil
}

func (f *fakeCache) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[symbol], nil
}

// fixedSpotClient resolves every symbol to the same spot price.
type fixedSpotClient float64

func (c fixedSpotClient) GetSpot(ctx context.Context, symbol string) (float64, error) {
	return float64(c), nil
}

func forwardStartCommand() ValuationCommand {
	return ValuationCommand{
		Symbol:        "EQ-FWD",
		Right:         "CALL",
		Method:        "BS",
		Spot:          50,
		Vol:           0.15,
		Maturity:      0.5,
		StartTime:     0.5,
		DomesticRate:  0.10,
		DividendYield: 0.05,
	}
}

func quantoCommand(method string) ValuationCommand {
	return ValuationCommand{
		Symbol:        "NIKKEI-USD",
		Right:         "CALL",
		Method:        method,
		Spot:          1200,
		Strike:        1200,
		Vol:           0.25,
		Maturity:      2,
		DomesticRate:  0.03,
		DividendYield: 0.015,
		ForeignRate:   0.05,
		FXVol:         0.12,
		Correlation:   0.2,
	}
}

func TestPriceForwardStartPersistsAndPublishes(t *testing.T) {
	repo := &fakeValuationRepo{}
	cache := newFakeCache()
	pub := &fakePublisher{}
	svc := NewPricingService(repo, cache, nil, pub)

	result, err := svc.PriceForwardStart(context.Background(), forwardStartCommand())
	if err != nil {
		t.Fatalf("PriceForwardStart failed: %v", err)
	}
	if result.ValuationID == "" || !strings.HasPrefix(result.ValuationID, "VAL-") {
		t.Errorf("expected VAL- prefixed valuation id, got %q", result.ValuationID)
	}
	if result.OptionClass != domain.ClassForwardStart {
		t.Errorf("expected option class %s, got %s", domain.ClassForwardStart, result.OptionClass)
	}

	// Price must agree with a direct engine call.
	direct, err := domain.PriceForwardStartAnalytic(domain.OptionContract{
		Symbol: "EQ-FWD", Right: domain.RightCall,
		Spot: 50, Vol: 0.15, Maturity: 0.5, StartTime: 0.5,
		DomesticRate: 0.10, DividendYield: 0.05,
	})
	if err != nil {
		t.Fatalf("direct engine call failed: %v", err)
	}
	if got, _ := result.Price.Float64(); got != direct.Price {
		t.Errorf("service price %v differs from engine price %v", got, direct.Price)
	}
	if result.Delta.IsZero() || result.Vega.IsZero() {
		t.Errorf("analytic valuation should carry greeks, got delta=%s vega=%s", result.Delta, result.Vega)
	}

	// Strike was omitted: at-the-money default must be persisted.
	if got, _ := result.Strike.Float64(); got != 50 {
		t.Errorf("expected effective strike 50, got %v", got)
	}

	if repo.count() != 1 {
		t.Errorf("expected 1 saved result, got %d", repo.count())
	}
	if len(pub.topics) != 1 || pub.topics[0] != domain.ValuationCompletedEventType {
		t.Errorf("expected one %s event, got %v", domain.ValuationCompletedEventType, pub.topics)
	}
	if pub.keys[0] != "EQ-FWD" {
		t.Errorf("event key should be the symbol, got %q", pub.keys[0])
	}
	if cached, _ := cache.GetLatest(context.Background(), "EQ-FWD"); cached == nil {
		t.Error("latest valuation should be cached after pricing")
	}
}

func TestValuateResolvesSpotFromMarketData(t *testing.T) {
	repo := &fakeValuationRepo{}
	svc := NewPricingService(repo, nil, fixedSpotClient(50), nil)

	cmd := forwardStartCommand()
	cmd.Spot = 0
	result, err := svc.PriceForwardStart(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceForwardStart failed: %v", err)
	}
	if got, _ := result.Spot.Float64(); got != 50 {
		t.Errorf("expected spot resolved to 50, got %v", got)
	}

	// Without a market data client the same command must be rejected.
	svcNoMarket := NewPricingService(&fakeValuationRepo{}, nil, nil, nil)
	if _, err := svcNoMarket.PriceForwardStart(context.Background(), cmd); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation without market data, got %v", err)
	}
}

func TestValuateRejectsUnsupportedCombinations(t *testing.T) {
	svc := NewPricingService(&fakeValuationRepo{}, nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  ValuationCommand
		want error
	}{
		{"forward start lattice", func() ValuationCommand { c := forwardStartCommand(); c.Method = "LT"; return c }(), domain.ErrUnsupportedMethod},
		{"forward start finite difference", func() ValuationCommand { c := forwardStartCommand(); c.Method = "FD"; return c }(), domain.ErrUnsupportedMethod},
		{"quanto analytic", quantoCommand("BS"), domain.ErrUnsupportedMethod},
		{"quanto finite difference", quantoCommand("FD"), domain.ErrUnsupportedMethod},
		{"unknown method", func() ValuationCommand { c := forwardStartCommand(); c.Method = "PDE"; return c }(), domain.ErrUnsupportedMethod},
		{"missing symbol", func() ValuationCommand { c := forwardStartCommand(); c.Symbol = ""; return c }(), domain.ErrValidation},
		{"bad right", func() ValuationCommand { c := forwardStartCommand(); c.Right = "STRADDLE"; return c }(), domain.ErrValidation},
	}
	for _, tc := range cases {
		var err error
		if tc.cmd.Symbol == "NIKKEI-USD" {
			_, err = svc.PriceQuanto(ctx, tc.cmd)
		} else {
			_, err = svc.PriceForwardStart(ctx, tc.cmd)
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// Unknown option class through the generic entry point.
	bad := forwardStartCommand()
	bad.OptionClass = "BASKET"
	if _, err := svc.Valuate(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown class, got %v", err)
	}
}

func TestPriceQuantoLatticeDefaultSteps(t *testing.T) {
	repo := &fakeValuationRepo{}
	svc := NewPricingService(repo, nil, nil, nil)

	cmd := quantoCommand("LT") // Steps omitted
	result, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto failed: %v", err)
	}

	direct, err := domain.PriceQuantoLattice(domain.OptionContract{
		Symbol: "NIKKEI-USD", Right: domain.RightCall,
		Spot: 1200, Strike: 1200, Vol: 0.25, Maturity: 2,
		DomesticRate: 0.03, DividendYield: 0.015,
		ForeignRate: 0.05, FXVol: 0.12, Correlation: 0.2,
	}, DefaultLatticeSteps, false)
	if err != nil {
		t.Fatalf("direct engine call failed: %v", err)
	}
	if got, _ := result.Price.Float64(); got != direct.Price {
		t.Errorf("default lattice steps should be %d: service price %v, engine price %v",
			DefaultLatticeSteps, got, direct.Price)
	}
	if strings.Contains(result.Diagnostics, "\"steps\"") {
		t.Errorf("engine params should not be recorded without KeepHistory, got %q", result.Diagnostics)
	}

	cmd.KeepHistory = true
	withDiag, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto with history failed: %v", err)
	}
	if !strings.Contains(withDiag.Diagnostics, "\"steps\":100") {
		t.Errorf("diagnostics should record the step count, got %q", withDiag.Diagnostics)
	}
}

func TestPriceQuantoMCSeedIsDeterministic(t *testing.T) {
	svc := NewPricingService(&fakeValuationRepo{}, nil, nil, nil)

	cmd := quantoCommand("MC")
	cmd.Steps = 10
	cmd.Paths = 2000
	cmd.Seed = 42

	first, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto failed: %v", err)
	}
	second, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto failed: %v", err)
	}
	if !first.Price.Equal(second.Price) {
		t.Errorf("same seed should reproduce the same price: %s vs %s", first.Price, second.Price)
	}

	// Seed 0 is auto-seeded, so two runs should not normally collide.
	cmd.Seed = 0
	auto1, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto failed: %v", err)
	}
	auto2, err := svc.PriceQuanto(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceQuanto failed: %v", err)
	}
	if auto1.Price.Equal(auto2.Price) {
		t.Errorf("auto seeding produced identical prices %s, seeds are likely not rotating", auto1.Price)
	}
}

func TestBatchValuate(t *testing.T) {
	repo := &fakeValuationRepo{}
	pub := &fakePublisher{}
	svc := NewPricingService(repo, nil, nil, pub)

	good := quantoCommand("MC")
	good.Steps = 5
	good.Paths = 500
	bad := quantoCommand("MC")
	bad.Vol = -1 // engine rejects negative volatility

	batch := BatchValuationCommand{
		BatchID:  "BATCH-1",
		Requests: []ValuationCommand{good, bad, good},
		BaseSeed: 7,
		Parallel: 2,
	}
	out, err := svc.BatchValuate(context.Background(), batch)
	if err != nil {
		t.Fatalf("BatchValuate failed: %v", err)
	}
	if out.SuccessCount != 2 || out.FailureCount != 1 {
		t.Errorf("expected 2 successes and 1 failure, got %d/%d", out.SuccessCount, out.FailureCount)
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "NIKKEI-USD") {
		t.Errorf("failure detail should name the symbol, got %v", out.Errors)
	}
	if repo.count() != 2 {
		t.Errorf("only successful valuations should be persisted, got %d", repo.count())
	}

	// Two completed-valuation events plus one batch summary event.
	var batchEvents int
	for _, topic := range pub.topics {
		if topic == domain.BatchValuationCompletedEventType {
			batchEvents++
		}
	}
	if batchEvents != 1 {
		t.Errorf("expected exactly one batch summary event, got %d", batchEvents)
	}

	// BaseSeed derives per-request seeds, so a rerun reproduces the prices.
	repo2 := &fakeValuationRepo{}
	svc2 := NewPricingService(repo2, nil, nil, &fakePublisher{})
	out2, err := svc2.BatchValuate(context.Background(), batch)
	if err != nil {
		t.Fatalf("BatchValuate rerun failed: %v", err)
	}
	if len(out.Results) != len(out2.Results) {
		t.Fatalf("rerun produced %d results, want %d", len(out2.Results), len(out.Results))
	}
	for i := range out.Results {
		if !out.Results[i].Price.Equal(out2.Results[i].Price) {
			t.Errorf("result %d: base seeded rerun should match, %s vs %s",
				i, out.Results[i].Price, out2.Results[i].Price)
		}
	}
}

func TestGetLatestValuation(t *testing.T) {
	repo := &fakeValuationRepo{}
	cache := newFakeCache()
	svc := NewPricingService(repo, cache, nil, nil)
	ctx := context.Background()

	if _, err := svc.GetLatestValuation(ctx, "UNKNOWN"); !errors.Is(err, domain.ErrValuationNotFound) {
		t.Errorf("expected ErrValuationNotFound, got %v", err)
	}

	if _, err := svc.PriceForwardStart(ctx, forwardStartCommand()); err != nil {
		t.Fatalf("PriceForwardStart failed: %v", err)
	}

	dto, err := svc.GetLatestValuation(ctx, "EQ-FWD")
	if err != nil {
		t.Fatalf("GetLatestValuation failed: %v", err)
	}
	if dto.Symbol != "EQ-FWD" || dto.Method != "BS" {
		t.Errorf("unexpected dto: %+v", dto)
	}

	// Second read must be served from cache: wipe the repo and read again.
	repo.mu.Lock()
	repo.saved = nil
	repo.mu.Unlock()
	cachedDTO, err := svc.GetLatestValuation(ctx, "EQ-FWD")
	if err != nil {
		t.Fatalf("cached GetLatestValuation failed: %v", err)
	}
	if cachedDTO.ValuationID != dto.ValuationID {
		t.Errorf("cache should serve the same valuation, got %q want %q", cachedDTO.ValuationID, dto.ValuationID)
	}
}

func TestGetValuationHistory(t *testing.T) {
	repo := &fakeValuationRepo{}
	svc := NewPricingService(repo, nil, nil, nil)
	ctx := context.Background()

	cmd := forwardStartCommand()
	for i := 0; i < 3; i++ {
		if _, err := svc.PriceForwardStart(ctx, cmd); err != nil {
			t.Fatalf("PriceForwardStart %d failed: %v", i, err)
		}
	}

	history, err := svc.GetValuationHistory(ctx, "EQ-FWD", 2)
	if err != nil {
		t.Fatalf("GetValuationHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 entries, got %d", len(history))
	}

	// Non-positive limit falls back to the default.
	all, err := svc.GetValuationHistory(ctx, "EQ-FWD", 0)
	if err != nil {
		t.Fatalf("GetValuationHistory failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected all 3 entries under the default limit, got %d", len(all))
	}
}
