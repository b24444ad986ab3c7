package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mockinvest/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ ResultStore = (*SQLiteStore)(nil)
var _ AccountStore = (*SQLiteStore)(nil)

// ErrInsufficientFunds is returned by Withdraw when the requested amount
// exceeds the account balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrResultNotFound is returned by GetResult for an unknown identifier.
var ErrResultNotFound = errors.New("result not found")

// SQLiteStore implements ResultStore and AccountStore backed by a SQLite
// database. Results are stored as a JSON document plus a few indexed columns
// for ranking queries.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite does not support concurrent writers on one file.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at  TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			period      TEXT NOT NULL,
			strategy    TEXT NOT NULL,
			profit_rate REAL NOT NULL,
			data        BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_results_profit_rate ON results (profit_rate DESC);

		CREATE TABLE IF NOT EXISTS account (
			id                INTEGER PRIMARY KEY CHECK (id = 1),
			cash              REAL NOT NULL,
			total_deposits    REAL NOT NULL DEFAULT 0,
			total_withdrawals REAL NOT NULL DEFAULT 0,
			created_at        TEXT NOT NULL
		);
	`)
	return err
}

// ---------------------------------------------------------------------------
// ResultStore implementation
// ---------------------------------------------------------------------------

// SaveResult stores a completed result. The assigned identifier and creation
// timestamp are written back into res so the caller's copy matches what a
// later GetResult returns.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *domain.BacktestResult) (int64, error) {
	res.CreatedAt = time.Now().UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx,
		`INSERT INTO results (created_at, symbol, period, strategy, profit_rate, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.CreatedAt.Format(time.RFC3339), res.Symbol, res.Period, res.Strategy,
		res.ProfitRate, []byte("{}"))
	if err != nil {
		return 0, fmt.Errorf("inserting result: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}
	res.ID = id

	// Marshal after the ID is known so the stored document round-trips.
	data, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("marshaling result: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE results SET data = ? WHERE id = ?`, data, id); err != nil {
		return 0, fmt.Errorf("storing result document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Rankings returns up to limit results ordered by profit rate descending.
// A limit of zero or less returns all results.
func (s *SQLiteStore) Rankings(ctx context.Context, limit int) ([]domain.BacktestResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded.
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM results ORDER BY profit_rate DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.BacktestResult
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var res domain.BacktestResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("unmarshaling result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetResult retrieves a single result by its identifier.
func (s *SQLiteStore) GetResult(ctx context.Context, id int64) (*domain.BacktestResult, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM results WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	var res domain.BacktestResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshaling result: %w", err)
	}
	return &res, nil
}

// ClearResults removes all stored results.
func (s *SQLiteStore) ClearResults(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	return err
}

// Statistics summarizes all stored results.
func (s *SQLiteStore) Statistics(ctx context.Context) (domain.HistoryStats, error) {
	var stats domain.HistoryStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(profit_rate), 0),
		       COALESCE(MAX(profit_rate), 0),
		       COALESCE(MIN(profit_rate), 0),
		       COALESCE(SUM(profit_rate > 0), 0),
		       COALESCE(SUM(profit_rate < 0), 0)
		FROM results
	`).Scan(&stats.TotalRuns, &stats.AvgProfitRate, &stats.BestProfitRate,
		&stats.WorstProfitRate, &stats.Positive, &stats.Negative)
	if err != nil {
		return domain.HistoryStats{}, err
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// AccountStore implementation
// ---------------------------------------------------------------------------

// ensureAccount creates the singleton account row if it does not exist yet.
func (s *SQLiteStore) ensureAccount(ctx context.Context, initialCash float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, cash, total_deposits, total_withdrawals, created_at)
		VALUES (1, ?, 0, 0, ?)
		ON CONFLICT (id) DO NOTHING
	`, initialCash, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Balance returns the current cash balance. An account that has never been
// touched reports zero.
func (s *SQLiteStore) Balance(ctx context.Context) (float64, error) {
	var cash float64
	err := s.db.QueryRowContext(ctx, `SELECT cash FROM account WHERE id = 1`).Scan(&cash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cash, nil
}

// UpdateBalance sets the cash balance.
func (s *SQLiteStore) UpdateBalance(ctx context.Context, balance float64) error {
	if err := s.ensureAccount(ctx, balance); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE account SET cash = ? WHERE id = 1`, balance)
	return err
}

// Deposit adds a positive amount to the balance.
func (s *SQLiteStore) Deposit(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %v", amount)
	}
	if err := s.ensureAccount(ctx, 0); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE account
		SET cash = cash + ?, total_deposits = total_deposits + ?
		WHERE id = 1
	`, amount, amount)
	return err
}

// Withdraw removes a positive amount from the balance. Overdrafts fail with
// ErrInsufficientFunds and leave the balance unchanged.
func (s *SQLiteStore) Withdraw(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("withdrawal amount must be positive, got %v", amount)
	}
	if err := s.ensureAccount(ctx, 0); err != nil {
		return err
	}
	r, err := s.db.ExecContext(ctx, `
		UPDATE account
		SET cash = cash - ?, total_withdrawals = total_withdrawals + ?
		WHERE id = 1 AND cash >= ?
	`, amount, amount, amount)
	if err != nil {
		return err
	}
	n, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// Reset reinitializes the account to the given starting cash, clearing the
// deposit and withdrawal totals.
func (s *SQLiteStore) Reset(ctx context.Context, initialCash float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, cash, total_deposits, total_withdrawals, created_at)
		VALUES (1, ?, 0, 0, ?)
		ON CONFLICT (id) DO UPDATE SET
			cash = excluded.cash,
			total_deposits = 0,
			total_withdrawals = 0,
			created_at = excluded.created_at
	`, initialCash, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Summary returns the account snapshot with running totals.
func (s *SQLiteStore) Summary(ctx context.Context) (domain.AccountSummary, error) {
	var sum domain.AccountSummary
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT cash, total_deposits, total_withdrawals, created_at
		FROM account WHERE id = 1
	`).Scan(&sum.Cash, &sum.TotalDeposits, &sum.TotalWithdrawals, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccountSummary{}, nil
	}
	if err != nil {
		return domain.AccountSummary{}, err
	}
	if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		sum.CreatedAt = t
	}
	return sum, nil
}
