// Package store defines storage interfaces for persisting and retrieving
// bars, trades, backtest results, and the simulation account.
package store

import (
	"context"
	"time"

	"mockinvest/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end], in
	// chronological order.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in storage.
	ListSymbols(ctx context.Context) ([]string, error)
}

// TradeLedger is the append-only record of fills produced during a run. The
// first append establishes the schema; later appends add rows. Appends happen
// synchronously during the run, so a crash leaves a consistent prefix.
type TradeLedger interface {
	// Append records one fill.
	Append(ctx context.Context, trade domain.Trade) error

	// ReadAll returns every recorded fill in append order.
	ReadAll(ctx context.Context) ([]domain.Trade, error)

	// Clear removes all recorded fills. Clearing an empty ledger is not an
	// error.
	Clear(ctx context.Context) error
}

// ResultStore persists completed backtest results and ranks them.
type ResultStore interface {
	// SaveResult stores a completed result, assigning it a sequential
	// identifier and creation timestamp. Both are written back into res and
	// the identifier is returned.
	SaveResult(ctx context.Context, res *domain.BacktestResult) (int64, error)

	// Rankings returns up to limit results ordered by profit rate descending.
	Rankings(ctx context.Context, limit int) ([]domain.BacktestResult, error)

	// GetResult retrieves a single result by its identifier.
	GetResult(ctx context.Context, id int64) (*domain.BacktestResult, error)

	// ClearResults removes all stored results.
	ClearResults(ctx context.Context) error

	// Statistics summarizes all stored results.
	Statistics(ctx context.Context) (domain.HistoryStats, error)
}

// AccountStore persists the simulation account balance across runs.
type AccountStore interface {
	// Balance returns the current cash balance.
	Balance(ctx context.Context) (float64, error)

	// UpdateBalance sets the cash balance, typically to a run's final cash.
	UpdateBalance(ctx context.Context, balance float64) error

	// Deposit adds a positive amount to the balance.
	Deposit(ctx context.Context, amount float64) error

	// Withdraw removes a positive amount from the balance. Withdrawing more
	// than the balance fails.
	Withdraw(ctx context.Context, amount float64) error

	// Reset reinitializes the account to the given starting cash.
	Reset(ctx context.Context, initialCash float64) error

	// Summary returns the account snapshot with running totals.
	Summary(ctx context.Context) (domain.AccountSummary, error)
}
