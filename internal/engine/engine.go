// Package engine implements simulated market-order execution. It is a pure
// state-transition layer: given a decision already made, it mutates the
// portfolio and produces a trade record. Cooldown and signal scheduling are
// the backtest runner's responsibility.
package engine

import (
	"errors"
	"fmt"

	"mockinvest/internal/domain"
)

// ErrInvalidSide is returned when an execution side is neither BUY nor SELL.
var ErrInvalidSide = errors.New("side must be BUY or SELL")

// CanExecute reports whether at least cooldownBars whole bars have elapsed
// since the last fill.
func CanExecute(nowBar, lastTradeBar, cooldownBars int) bool {
	return nowBar-lastTradeBar >= cooldownBars
}

// ExecuteMarket fills a market order against the portfolio and returns the
// resulting trade.
//
// BUY spends min(orderCash, available cash) at the given price plus a
// proportional fee. SELL always liquidates the entire position. Both sides
// update the portfolio's last price and last trade bar.
func ExecuteMarket(
	pf *domain.Portfolio,
	side domain.Side,
	price float64,
	nowBar int,
	feeRate float64,
	orderCash float64,
	ruleName string,
) (domain.Trade, error) {
	var (
		qty float64
		fee float64
	)

	switch side {
	case domain.SideBuy:
		cashToUse := min(orderCash, pf.Cash)
		qty = cashToUse / price
		fee = price * qty * feeRate
		pf.Cash -= cashToUse + fee
		pf.AssetQty += qty

	case domain.SideSell:
		qty = pf.AssetQty
		cashGain := price * qty
		fee = cashGain * feeRate
		pf.Cash += cashGain - fee
		pf.AssetQty = 0

	default:
		return domain.Trade{}, fmt.Errorf("executing %q: %w", side, ErrInvalidSide)
	}

	pf.LastPrice = price
	pf.LastTradeBar = nowBar

	return domain.Trade{
		Bar:      nowBar,
		Side:     side,
		Price:    price,
		Qty:      qty,
		Fee:      fee,
		RuleName: ruleName,
	}, nil
}
