package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mockinvest/internal/domain"
)

// Compile-time interface check.
var _ TradeLedger = (*CSVLedger)(nil)

// csvHeader is the first row of every ledger file.
var csvHeader = []string{"bar", "date", "side", "price", "qty", "fee", "rule"}

// CSVLedger implements TradeLedger as a single append-only CSV file. Each
// Append rewrites nothing: the file is opened in append mode and the header
// is written only when the file is created.
type CSVLedger struct {
	Path string
}

// NewCSVLedger creates a ledger backed by the CSV file at path.
func NewCSVLedger(path string) *CSVLedger {
	return &CSVLedger{Path: path}
}

// Append records one fill at the end of the ledger file, creating the file
// with a header row if it does not exist yet.
func (l *CSVLedger) Append(_ context.Context, trade domain.Trade) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return err
	}

	_, statErr := os.Stat(l.Path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{
		strconv.Itoa(trade.Bar),
		trade.Date.Format(time.RFC3339),
		string(trade.Side),
		strconv.FormatFloat(trade.Price, 'f', -1, 64),
		strconv.FormatFloat(trade.Qty, 'f', -1, 64),
		strconv.FormatFloat(trade.Fee, 'f', -1, 64),
		trade.RuleName,
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// ReadAll returns every recorded fill in append order. A missing file is an
// empty ledger, not an error.
func (l *CSVLedger) ReadAll(_ context.Context) ([]domain.Trade, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	trades := make([]domain.Trade, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("malformed ledger row: %v", row)
		}
		bar, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("parsing bar index %q: %w", row[0], err)
		}
		date, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", row[1], err)
		}
		price, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing price %q: %w", row[3], err)
		}
		qty, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing qty %q: %w", row[4], err)
		}
		fee, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing fee %q: %w", row[5], err)
		}
		trades = append(trades, domain.Trade{
			Bar:      bar,
			Date:     date,
			Side:     domain.Side(row[2]),
			Price:    price,
			Qty:      qty,
			Fee:      fee,
			RuleName: row[6],
		})
	}
	return trades, nil
}

// Clear removes the ledger file. Clearing a missing file is not an error.
func (l *CSVLedger) Clear(_ context.Context) error {
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
