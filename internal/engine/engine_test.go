package engine

import (
	"errors"
	"math"
	"testing"

	"mockinvest/internal/domain"
)

func TestCanExecute(t *testing.T) {
	// Same bar as the last fill with a positive cooldown: blocked.
	if CanExecute(10, 10, 1) {
		t.Error("CanExecute(t, t, 1) = true, want false")
	}
	// Zero cooldown never blocks.
	if !CanExecute(10, 10, 0) {
		t.Error("CanExecute(t, t, 0) = false, want true")
	}
	// Exactly cooldown bars elapsed: allowed.
	if !CanExecute(15, 10, 5) {
		t.Error("CanExecute(15, 10, 5) = false, want true")
	}
	if CanExecute(14, 10, 5) {
		t.Error("CanExecute(14, 10, 5) = true, want false")
	}
}

func TestExecuteMarketBuy(t *testing.T) {
	pf := domain.NewPortfolio(1000000)

	tr, err := ExecuteMarket(pf, domain.SideBuy, 100, 5, 0, 1000000, "sma-cross")
	if err != nil {
		t.Fatalf("ExecuteMarket: %v", err)
	}

	if tr.Qty != 10000 {
		t.Errorf("Qty = %v, want 10000", tr.Qty)
	}
	if pf.AssetQty != 10000 {
		t.Errorf("AssetQty = %v, want 10000", pf.AssetQty)
	}
	if pf.Cash != 0 {
		t.Errorf("Cash = %v, want 0", pf.Cash)
	}
	if tr.Fee != 0 {
		t.Errorf("Fee = %v, want 0 at zero fee rate", tr.Fee)
	}
	if pf.LastPrice != 100 || pf.LastTradeBar != 5 {
		t.Errorf("portfolio not marked: LastPrice=%v LastTradeBar=%d", pf.LastPrice, pf.LastTradeBar)
	}
	if tr.Side != domain.SideBuy || tr.Bar != 5 || tr.RuleName != "sma-cross" {
		t.Errorf("trade record mismatch: %+v", tr)
	}
}

func TestExecuteMarketBuyWithFee(t *testing.T) {
	pf := domain.NewPortfolio(10000)

	// Order cash capped by available cash; fee charged on top.
	tr, err := ExecuteMarket(pf, domain.SideBuy, 50, 1, 0.001, 20000, "rsi")
	if err != nil {
		t.Fatalf("ExecuteMarket: %v", err)
	}

	wantQty := 10000.0 / 50
	if math.Abs(tr.Qty-wantQty) > 1e-9 {
		t.Errorf("Qty = %v, want %v", tr.Qty, wantQty)
	}
	wantFee := 50 * wantQty * 0.001
	if math.Abs(tr.Fee-wantFee) > 1e-9 {
		t.Errorf("Fee = %v, want %v", tr.Fee, wantFee)
	}
	wantCash := 10000 - 10000 - wantFee
	if math.Abs(pf.Cash-wantCash) > 1e-9 {
		t.Errorf("Cash = %v, want %v", pf.Cash, wantCash)
	}
}

func TestExecuteMarketSellLiquidatesPosition(t *testing.T) {
	pf := domain.NewPortfolio(0)
	pf.AssetQty = 20
	pf.LastPrice = 90

	tr, err := ExecuteMarket(pf, domain.SideSell, 110, 7, 0.01, 0, "macd")
	if err != nil {
		t.Fatalf("ExecuteMarket: %v", err)
	}

	if pf.AssetQty != 0 {
		t.Errorf("AssetQty = %v, want 0 after SELL", pf.AssetQty)
	}
	gross := 110.0 * 20
	wantFee := gross * 0.01
	if math.Abs(tr.Fee-wantFee) > 1e-9 {
		t.Errorf("Fee = %v, want %v", tr.Fee, wantFee)
	}
	if math.Abs(pf.Cash-(gross-wantFee)) > 1e-9 {
		t.Errorf("Cash = %v, want %v", pf.Cash, gross-wantFee)
	}
	if tr.Qty != 20 {
		t.Errorf("Qty = %v, want 20", tr.Qty)
	}
}

func TestExecuteMarketInvalidSide(t *testing.T) {
	pf := domain.NewPortfolio(1000)

	_, err := ExecuteMarket(pf, domain.Side("HOLD"), 100, 0, 0, 100, "x")
	if !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("err = %v, want ErrInvalidSide", err)
	}

	// Portfolio untouched on failure.
	if pf.Cash != 1000 || pf.AssetQty != 0 || pf.LastTradeBar != 0 {
		t.Errorf("portfolio mutated by failed execution: %+v", pf)
	}
}
