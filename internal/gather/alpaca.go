package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"mockinvest/internal/domain"
	"mockinvest/internal/store"
	"mockinvest/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*DailyBarGatherer)(nil)

const (
	// fetchBatchSize is the number of symbols per GetMultiBars call.
	fetchBatchSize = 50

	// fetchAttempts and fetchBaseDelay shape the retry policy for one batch.
	fetchAttempts  = 3
	fetchBaseDelay = 2 * time.Second

	// requestsPerMinute keeps us under the Alpaca free-tier rate limit.
	requestsPerMinute = 200
)

// DailyBarGatherer fetches daily OHLCV bars for a fixed symbol list via the
// Alpaca market-data API and writes them to the bar store.
type DailyBarGatherer struct {
	client  *marketdata.Client
	store   store.BarStore
	symbols []string
	rng     DateRange
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewDailyBarGatherer creates a DailyBarGatherer for the given symbols and
// date range. An empty dataURL uses the Alpaca production data endpoint.
func NewDailyBarGatherer(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, rng DateRange) *DailyBarGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &DailyBarGatherer{
		client:  marketdata.NewClient(opts),
		store:   s,
		symbols: normalizeSymbols(symbols),
		rng:     rng,
		limiter: util.NewRateLimiter(requestsPerMinute),
		log:     slog.Default().With("gatherer", "daily-bars"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "daily-bars" }

// Run fetches daily bars for the configured symbols in batches and writes
// them to the bar store. Re-running over the same range is idempotent: the
// store merges by timestamp.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	if len(g.symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}

	runStart := time.Now()
	g.log.Info("starting",
		"symbols", len(g.symbols),
		"start", g.rng.Start.Format("2006-01-02"),
		"end", g.rng.End.Format("2006-01-02"),
	)

	var total int
	for i := 0; i < len(g.symbols); i += fetchBatchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		batch := g.symbols[i:min(i+fetchBatchSize, len(g.symbols))]

		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, fetchAttempts, fetchBaseDelay, func() error {
			var ferr error
			bars, ferr = g.fetchMultiBars(batch)
			return ferr
		})
		if err != nil {
			return fmt.Errorf("fetching batch %v: %w", batch, err)
		}

		if err := g.store.WriteBars(ctx, bars); err != nil {
			return fmt.Errorf("writing batch %v: %w", batch, err)
		}

		total += len(bars)
		g.log.Info("batch done", "symbols", batch, "bars", len(bars))
	}

	g.log.Info("complete",
		"bars", total,
		"elapsed", time.Since(runStart).Round(time.Second),
	)
	return nil
}

// fetchMultiBars fetches daily bars for multiple symbols in a single API call.
func (g *DailyBarGatherer) fetchMultiBars(symbols []string) ([]domain.Bar, error) {
	multiBars, err := g.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     g.rng.Start,
		End:       g.rng.End,
		Feed:      "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}
	return convertMultiBars(multiBars), nil
}

// convertMultiBars flattens the per-symbol Alpaca response into domain bars.
func convertMultiBars(multiBars map[string][]marketdata.Bar) []domain.Bar {
	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:    strings.ToUpper(symbol),
				Timestamp: ab.Timestamp,
				Open:      ab.Open,
				High:      ab.High,
				Low:       ab.Low,
				Close:     ab.Close,
				Volume:    int64(ab.Volume),
			})
		}
	}
	return bars
}

// normalizeSymbols upper-cases and deduplicates the configured symbol list,
// preserving order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	var out []string
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
