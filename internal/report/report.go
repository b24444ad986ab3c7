// Package report renders backtest results, rankings, and account summaries
// as console tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"mockinvest/internal/domain"
)

// Reporter writes formatted reports to a single output writer.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Result renders the full report for one completed run: summary, benchmark
// comparison, the trade list, and the signal diagnostics when the run
// produced no trades.
func (r *Reporter) Result(res *domain.BacktestResult) {
	fmt.Fprintf(r.out, "\n=== %s / %s ===\n", res.Symbol, res.Strategy)
	fmt.Fprintf(r.out, "%s\n", res.Params)
	if res.Period != "" {
		fmt.Fprintf(r.out, "Period: %s\n", res.Period)
	}
	fmt.Fprintln(r.out)

	table := tablewriter.NewWriter(r.out)
	table.Header("Metric", "Value")
	table.Append("Initial cash", FormatMoney(res.InitialCash))
	table.Append("Final equity", FormatMoney(res.FinalEquity))
	table.Append("Profit/loss", FormatMoney(res.ProfitLoss))
	table.Append("Profit rate", FormatSignedPct(res.ProfitRate))
	table.Append("Total fees", FormatMoney(res.TotalFees))
	table.Append("Trades", strconv.Itoa(len(res.Trades)))
	table.Append("Buy & hold", FormatSignedPct(res.Benchmark.ProfitRate))
	table.Append("Outperformance", FormatSignedPct(res.Benchmark.Outperformance))
	table.Render()

	if len(res.Trades) > 0 {
		r.trades(res.Trades)
	} else {
		r.noTradeDiagnostics(res.Signals)
	}
}

// trades renders the fill list of a run.
func (r *Reporter) trades(trades []domain.Trade) {
	fmt.Fprintln(r.out, "\nTrades:")
	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Bar", "Date", "Side", "Price", "Qty", "Fee", "Rule")
	for i, t := range trades {
		table.Append(
			strconv.Itoa(i+1),
			strconv.Itoa(t.Bar),
			t.Date.Format("2006-01-02"),
			string(t.Side),
			FormatMoney(t.Price),
			FormatQty(t.Qty),
			FormatMoney(t.Fee),
			t.RuleName,
		)
	}
	table.Render()
}

// noTradeDiagnostics explains why a run produced no trades.
func (r *Reporter) noTradeDiagnostics(s domain.SignalCounts) {
	fmt.Fprintln(r.out, "\nNo trades were executed.")
	fmt.Fprintf(r.out, "  signals: %d buy, %d sell\n", s.BuySignals, s.SellSignals)
	if s.BuySignals == 0 && s.SellSignals == 0 {
		fmt.Fprintln(r.out, "  the strategy never signalled; try different parameters or a longer period")
		return
	}
	if s.BlockedCooldown > 0 {
		fmt.Fprintf(r.out, "  %d signal(s) blocked by the trade cooldown\n", s.BlockedCooldown)
	}
	if s.BlockedNoAsset > 0 {
		fmt.Fprintf(r.out, "  %d sell signal(s) dropped with no position to sell\n", s.BlockedNoAsset)
	}
	if s.BlockedNoCash > 0 {
		fmt.Fprintf(r.out, "  %d buy signal(s) dropped below the minimum order cash\n", s.BlockedNoCash)
	}
}

// Rankings renders stored results ordered by profit rate.
func (r *Reporter) Rankings(results []domain.BacktestResult) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, "No backtest results recorded yet.")
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("Rank", "ID", "Date", "Symbol", "Strategy", "Profit", "vs B&H", "Trades")
	for i, res := range results {
		table.Append(
			strconv.Itoa(i+1),
			strconv.FormatInt(res.ID, 10),
			res.CreatedAt.Format("2006-01-02 15:04"),
			res.Symbol,
			res.Strategy,
			FormatSignedPct(res.ProfitRate),
			FormatSignedPct(res.Benchmark.Outperformance),
			strconv.Itoa(len(res.Trades)),
		)
	}
	table.Render()
}

// Stats renders the aggregate history statistics.
func (r *Reporter) Stats(s domain.HistoryStats) {
	if s.TotalRuns == 0 {
		fmt.Fprintln(r.out, "No backtest results recorded yet.")
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("Metric", "Value")
	table.Append("Total runs", strconv.Itoa(s.TotalRuns))
	table.Append("Average profit", FormatSignedPct(s.AvgProfitRate))
	table.Append("Best run", FormatSignedPct(s.BestProfitRate))
	table.Append("Worst run", FormatSignedPct(s.WorstProfitRate))
	table.Append("Profitable runs", fmt.Sprintf("%d / %d", s.Positive, s.TotalRuns))
	table.Render()
}

// Account renders the persistent account summary.
func (r *Reporter) Account(a domain.AccountSummary) {
	table := tablewriter.NewWriter(r.out)
	table.Header("Metric", "Value")
	table.Append("Cash balance", FormatMoney(a.Cash))
	table.Append("Total deposits", FormatMoney(a.TotalDeposits))
	table.Append("Total withdrawals", FormatMoney(a.TotalWithdrawals))
	table.Append("Net deposits", FormatMoney(a.NetDeposits()))
	if !a.CreatedAt.IsZero() {
		table.Append("Opened", a.CreatedAt.Format("2006-01-02"))
	}
	table.Render()
}
