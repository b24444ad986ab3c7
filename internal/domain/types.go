// Package domain defines the core data types shared across the simulator:
// price bars, portfolio state, trades, and backtest results.
package domain

import "time"

// Action is a strategy decision for a single bar.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionKeep Action = "KEEP"
)

// Side is the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Bar is one daily OHLCV price bar.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Portfolio is the mutable account state of a single backtest run. The
// backtest runner owns the only live instance; the execution engine is its
// sole mutator.
type Portfolio struct {
	Cash         float64
	AssetQty     float64
	LastPrice    float64
	LastTradeBar int // bar index of the most recent fill; 0 if none
}

// NewPortfolio creates a Portfolio holding the given starting cash.
func NewPortfolio(cash float64) *Portfolio {
	return &Portfolio{Cash: cash}
}

// Equity returns cash plus the mark-to-market value of the held position.
func (p *Portfolio) Equity() float64 {
	return p.Cash + p.AssetQty*p.LastPrice
}

// Trade is an immutable record of one completed fill.
type Trade struct {
	Bar      int       `json:"bar"` // bar index at fill time
	Date     time.Time `json:"date"`
	Side     Side      `json:"side"`
	Price    float64   `json:"price"` // execution price, post-slippage
	Qty      float64   `json:"qty"`
	Fee      float64   `json:"fee"`
	RuleName string    `json:"rule"`
}

// PendingSignal is a strategy decision recorded on one bar for execution at
// the next bar's open. At most one exists at a time.
type PendingSignal struct {
	Action    Action
	SignalBar int
}

// SignalCounts aggregates per-run signal and gate statistics. They explain a
// run that produced no trades.
type SignalCounts struct {
	BuySignals      int `json:"buy_signals"`
	SellSignals     int `json:"sell_signals"`
	BlockedCooldown int `json:"blocked_cooldown"`
	BlockedNoAsset  int `json:"blocked_no_asset"`
	BlockedNoCash   int `json:"blocked_no_cash"`
}

// Benchmark is the buy-and-hold comparison computed alongside a run.
type Benchmark struct {
	ProfitRate     float64 `json:"profit_rate"` // percent
	FinalValue     float64 `json:"final_value"`
	Outperformance float64 `json:"outperformance"` // strategy rate minus benchmark rate
}

// Settings are the execution parameters a run was performed with.
type Settings struct {
	FeeRate      float64 `json:"fee_rate"`
	CooldownBars int     `json:"cooldown_bars"`
	OrderRatio   float64 `json:"order_ratio"`
}

// BacktestResult is the immutable, external-facing record of one completed
// run. The result store assigns ID and CreatedAt on save.
type BacktestResult struct {
	ID          int64        `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Symbol      string       `json:"symbol"`
	Period      string       `json:"period"`
	Strategy    string       `json:"strategy"`
	Params      string       `json:"params"` // human-readable parameter summary
	InitialCash float64      `json:"initial_cash"`
	FinalEquity float64      `json:"final_equity"`
	ProfitLoss  float64      `json:"profit_loss"`
	ProfitRate  float64      `json:"profit_rate"` // percent
	TotalFees   float64      `json:"total_fees"`
	Trades      []Trade      `json:"trades"`
	EquityCurve []float64    `json:"equity_curve"`
	Benchmark   Benchmark    `json:"benchmark"`
	Settings    Settings     `json:"settings"`
	Signals     SignalCounts `json:"signals"`
}

// HistoryStats summarizes all recorded backtest runs.
type HistoryStats struct {
	TotalRuns       int
	AvgProfitRate   float64
	BestProfitRate  float64
	WorstProfitRate float64
	Positive        int
	Negative        int
}

// AccountSummary is a snapshot of the persistent simulation account.
type AccountSummary struct {
	Cash             float64
	TotalDeposits    float64
	TotalWithdrawals float64
	CreatedAt        time.Time
}

// NetDeposits returns deposits minus withdrawals.
func (a AccountSummary) NetDeposits() float64 {
	return a.TotalDeposits - a.TotalWithdrawals
}
