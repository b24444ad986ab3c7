// Package backtest replays a historical bar series through a strategy and
// simulates order execution with next-bar fills, slippage, fees, and
// cooldowns.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mockinvest/internal/domain"
	"mockinvest/internal/engine"
	"mockinvest/internal/store"
	"mockinvest/internal/strategy"
)

const (
	// slippageRate is the fixed price adjustment applied to next-bar fills:
	// +0.1% for BUY, -0.1% for SELL.
	slippageRate = 0.001

	// minOrderCash is the smallest cash balance that still allows a BUY
	// signal to be scheduled.
	minOrderCash = 1000
)

// ErrNoBars is returned when a run is started with an empty price series.
var ErrNoBars = errors.New("empty price series")

// Params are the inputs of one backtest run.
type Params struct {
	Symbol      string
	Period      string
	InitialCash float64
	Settings    domain.Settings
}

// Runner executes backtest runs, appending each fill to the trade ledger as
// it happens. The ledger is cleared at the start of every run, so it always
// reflects the most recent run only.
type Runner struct {
	ledger store.TradeLedger
	log    *slog.Logger
}

// NewRunner creates a Runner that records fills in the given ledger. A nil
// ledger disables trade logging.
func NewRunner(ledger store.TradeLedger) *Runner {
	return &Runner{
		ledger: ledger,
		log:    slog.Default().With("component", "backtest"),
	}
}

// Run replays the bar series through the strategy, one bar at a time in
// chronological order, and returns the completed result.
//
// Signals are never filled on the bar that produced them: a BUY/SELL decision
// on bar T is recorded as the (single) pending signal and executed at bar
// T+1's open, adjusted for slippage. Signals blocked by the cooldown or by
// position/cash gates are counted and dropped, not queued. If a position
// remains at the end of the series it is liquidated at the final close.
//
// A run that produces no trades is not an error: the result carries the
// signal and block counters that explain it.
func (r *Runner) Run(
	ctx context.Context,
	bars []domain.Bar,
	strat strategy.Strategy,
	p Params,
) (*domain.BacktestResult, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	// Start each run with a fresh ledger.
	if r.ledger != nil {
		if err := r.ledger.Clear(ctx); err != nil {
			r.log.Warn("ledger clear failed", "err", err)
		}
	}

	pf := domain.NewPortfolio(p.InitialCash)
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var (
		trades      []domain.Trade
		equityCurve = make([]float64, 0, len(bars))
		counts      domain.SignalCounts
		pending     *domain.PendingSignal
	)

	for idx, bar := range bars {
		// Mark to market at the close, then record equity. The equity point
		// for a bar is taken before that bar's fill resolves.
		pf.LastPrice = bar.Close
		equityCurve = append(equityCurve, pf.Equity())

		// Resolve the pending signal from the previous bar at today's open.
		if pending != nil {
			execPrice := bar.Open * (1 + slippageRate)
			side := domain.SideBuy
			if pending.Action == domain.ActionSell {
				execPrice = bar.Open * (1 - slippageRate)
				side = domain.SideSell
			}
			orderCash := pf.Cash * p.Settings.OrderRatio

			trade, err := engine.ExecuteMarket(pf, side, execPrice, idx, p.Settings.FeeRate, orderCash, strat.Name())
			if err != nil {
				// A failed fill is reported, not retried.
				r.log.Warn("fill failed", "bar", idx, "side", side, "err", err)
			} else {
				trade.Date = bar.Timestamp
				trades = append(trades, trade)
				r.appendToLedger(ctx, trade)
			}

			// Cleared whether or not the fill succeeded.
			pending = nil
		}

		// Evaluate the strategy on the close-price prefix ending today.
		action := strat.Decide(closes[:idx+1])
		if action == domain.ActionKeep {
			continue
		}

		switch action {
		case domain.ActionBuy:
			counts.BuySignals++
		case domain.ActionSell:
			counts.SellSignals++
		}

		// The last bar has no next open to fill on.
		if idx >= len(bars)-1 {
			continue
		}

		if !engine.CanExecute(idx, pf.LastTradeBar, p.Settings.CooldownBars) {
			counts.BlockedCooldown++
			continue
		}
		if action == domain.ActionSell && pf.AssetQty == 0 {
			counts.BlockedNoAsset++
			continue
		}
		if action == domain.ActionBuy && pf.Cash < minOrderCash {
			counts.BlockedNoCash++
			continue
		}

		pending = &domain.PendingSignal{Action: action, SignalBar: idx}
	}

	// Liquidate any remaining position at the final close. Fee applies, the
	// slippage adjustment does not.
	if pf.AssetQty > 0 {
		lastIdx := len(bars) - 1
		trade, err := engine.ExecuteMarket(
			pf, domain.SideSell, bars[lastIdx].Close, lastIdx,
			p.Settings.FeeRate, 0, strat.Name()+" (liquidation)",
		)
		if err != nil {
			return nil, fmt.Errorf("liquidating position: %w", err)
		}
		trade.Date = bars[lastIdx].Timestamp
		trades = append(trades, trade)
		r.appendToLedger(ctx, trade)
	}

	finalEquity := pf.Equity()
	totalFees := 0.0
	for _, t := range trades {
		totalFees += t.Fee
	}

	res := &domain.BacktestResult{
		Symbol:      p.Symbol,
		Period:      p.Period,
		Strategy:    strat.Name(),
		Params:      strat.Description(),
		InitialCash: p.InitialCash,
		FinalEquity: finalEquity,
		ProfitLoss:  finalEquity - p.InitialCash,
		ProfitRate:  (finalEquity - p.InitialCash) / p.InitialCash * 100,
		TotalFees:   totalFees,
		Trades:      trades,
		EquityCurve: equityCurve,
		Benchmark:   benchmark(bars, p.InitialCash),
		Settings:    p.Settings,
		Signals:     counts,
	}
	res.Benchmark.Outperformance = res.ProfitRate - res.Benchmark.ProfitRate

	r.log.Info("run complete",
		"symbol", p.Symbol,
		"strategy", strat.Name(),
		"bars", len(bars),
		"trades", len(trades),
		"profitRate", fmt.Sprintf("%.2f%%", res.ProfitRate),
	)
	return res, nil
}

// appendToLedger records a fill, logging rather than aborting on failure so
// a ledger I/O problem cannot stop a run mid-series.
func (r *Runner) appendToLedger(ctx context.Context, trade domain.Trade) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.Append(ctx, trade); err != nil {
		r.log.Warn("ledger append failed", "bar", trade.Bar, "err", err)
	}
}

// benchmark computes the buy-and-hold comparison: the maximum quantity
// affordable at the first bar's open, marked at the last bar's close.
func benchmark(bars []domain.Bar, initialCash float64) domain.Benchmark {
	qty := initialCash / bars[0].Open
	final := qty * bars[len(bars)-1].Close
	return domain.Benchmark{
		ProfitRate: (final - initialCash) / initialCash * 100,
		FinalValue: final,
	}
}
