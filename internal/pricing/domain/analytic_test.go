package domain

import (
	"errors"
	"math"
	"testing"
)

func TestPriceForwardStartAnalyticCall(t *testing.T) {
	res, err := PriceForwardStartAnalytic(OptionContract{
		Symbol:        "EQ1",
		Right:         RightCall,
		Spot:          50,
		Strike:        50,
		Vol:           0.15,
		Maturity:      0.5,
		StartTime:     0.5,
		DomesticRate:  0.10,
		DividendYield: 0.05,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Price-2.6287772667343705) > 1e-9 {
		t.Errorf("price = %v, want 2.6287772667343705", res.Price)
	}
}

func TestPriceForwardStartAnalyticOTMCall(t *testing.T) {
	res, err := PriceForwardStartAnalytic(OptionContract{
		Symbol:        "EQ2",
		Right:         RightCall,
		Spot:          60,
		Strike:        66,
		Vol:           0.30,
		Maturity:      0.75,
		StartTime:     0.25,
		DomesticRate:  0.08,
		DividendYield: 0.04,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Price-4.406454339365007) > 1e-9 {
		t.Errorf("price = %v, want 4.406454339365007", res.Price)
	}
}

func TestPriceForwardStartAnalyticImmediateStart(t *testing.T) {
	// T_s = 0 must collapse to the vanilla Black-Scholes price with dividends.
	c := OptionContract{
		Right:         RightCall,
		Spot:          100,
		Strike:        95,
		Vol:           0.2,
		Maturity:      1,
		StartTime:     0,
		DomesticRate:  0.05,
		DividendYield: 0.03,
	}
	res, err := PriceForwardStartAnalytic(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Independent reference using erfc directly.
	cdf := func(x float64) float64 { return 0.5 * math.Erfc(-x/math.Sqrt2) }
	sqrtT := math.Sqrt(c.Maturity)
	d1 := (math.Log(c.Spot/c.Strike) + (c.DomesticRate-c.DividendYield+0.5*c.Vol*c.Vol)*c.Maturity) / (c.Vol * sqrtT)
	d2 := d1 - c.Vol*sqrtT
	want := c.Spot*math.Exp(-c.DividendYield*c.Maturity)*cdf(d1) - c.Strike*math.Exp(-c.DomesticRate*c.Maturity)*cdf(d2)
	if math.Abs(res.Price-want) > 1e-12 {
		t.Errorf("immediate start price = %v, want vanilla %v", res.Price, want)
	}
}

func TestPriceForwardStartAnalyticZeroVol(t *testing.T) {
	// With no volatility the option is worth the discounted intrinsic forward value.
	res, err := PriceForwardStartAnalytic(OptionContract{
		Right:         RightCall,
		Spot:          50,
		Strike:        50,
		Vol:           0,
		Maturity:      0.5,
		StartTime:     0.5,
		DomesticRate:  0.10,
		DividendYield: 0.05,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (50*math.Exp(-0.05*0.5) - 50*math.Exp(-0.10*0.5)) * math.Exp(-0.05*0.5)
	if math.Abs(res.Price-want) > 1e-12 {
		t.Errorf("zero vol price = %v, want %v", res.Price, want)
	}
}

func TestPriceForwardStartAnalyticDefaultStrike(t *testing.T) {
	// Strike 0 means at-the-money issuance: identical to an explicit strike at spot.
	base := validContract()
	explicit, err := PriceForwardStartAnalytic(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base.Strike = 0
	defaulted, err := PriceForwardStartAnalytic(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explicit.Price != defaulted.Price {
		t.Errorf("defaulted strike price %v differs from explicit %v", defaulted.Price, explicit.Price)
	}
}

func TestPriceForwardStartAnalyticPut(t *testing.T) {
	c := validContract()
	c.Right = RightPut
	res, err := PriceForwardStartAnalytic(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Price <= 0 {
		t.Errorf("put price = %v, want positive", res.Price)
	}
	if res.Greeks.Delta >= 0 {
		t.Errorf("put delta = %v, want negative", res.Greeks.Delta)
	}
}

func TestPriceForwardStartAnalyticGreeks(t *testing.T) {
	res, err := PriceForwardStartAnalytic(validContract())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := res.Greeks
	if g.Delta <= 0 || g.Delta >= 1 {
		t.Errorf("call delta = %v, want in (0, 1)", g.Delta)
	}
	if g.Gamma <= 0 {
		t.Errorf("gamma = %v, want positive", g.Gamma)
	}
	if g.Vega <= 0 {
		t.Errorf("vega = %v, want positive", g.Vega)
	}
	if g.Rho <= 0 {
		t.Errorf("call rho = %v, want positive", g.Rho)
	}

	// Finite-difference cross-check on delta.
	bump := validContract()
	bump.Spot += 0.0001
	up, err := PriceForwardStartAnalytic(bump)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fd := (up.Price - res.Price) / 0.0001
	if math.Abs(fd-g.Delta) > 1e-3 {
		t.Errorf("delta %v far from finite difference %v", g.Delta, fd)
	}
}

func TestPriceForwardStartAnalyticRejectsBadInput(t *testing.T) {
	c := validContract()
	c.Maturity = 0
	if _, err := PriceForwardStartAnalytic(c); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero maturity, got %v", err)
	}

	c = validContract()
	c.Vol = -0.2
	if _, err := PriceForwardStartAnalytic(c); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative vol, got %v", err)
	}
}
