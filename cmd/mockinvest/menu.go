package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mockinvest/internal/backtest"
	"mockinvest/internal/config"
	"mockinvest/internal/domain"
	"mockinvest/internal/report"
	"mockinvest/internal/store"
	"mockinvest/internal/strategy"
	"mockinvest/internal/strategy/builtins"
)

// app wires the interactive menu to the stores, the strategy registry, and
// the backtest runner. Input and output are injectable for tests.
type app struct {
	cfg      *config.Config
	cfgPath  string
	in       io.Reader
	out      io.Writer
	bars     store.BarStore
	results  store.ResultStore
	account  store.AccountStore
	ledger   store.TradeLedger
	registry *strategy.Registry
	reporter *report.Reporter
	runner   *backtest.Runner

	scanner *bufio.Scanner
}

// run shows the main menu until the user exits or ctx is cancelled.
func (a *app) run(ctx context.Context) error {
	a.scanner = bufio.NewScanner(a.in)

	for ctx.Err() == nil {
		fmt.Fprintln(a.out, "\n=== Mock Investing ===")
		fmt.Fprintln(a.out, "1. Account")
		fmt.Fprintln(a.out, "2. Run backtest")
		fmt.Fprintln(a.out, "3. Rankings & history")
		fmt.Fprintln(a.out, "4. Settings")
		fmt.Fprintln(a.out, "0. Exit")

		choice, ok := a.prompt("> ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = a.accountMenu(ctx)
		case "2":
			err = a.backtestMenu(ctx)
		case "3":
			err = a.historyMenu(ctx)
		case "4":
			err = a.settingsMenu()
		case "0", "q", "exit":
			return nil
		default:
			fmt.Fprintf(a.out, "unknown choice %q\n", choice)
		}
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
	return ctx.Err()
}

// ---------------------------------------------------------------------------
// Account
// ---------------------------------------------------------------------------

func (a *app) accountMenu(ctx context.Context) error {
	sum, err := a.account.Summary(ctx)
	if err != nil {
		return err
	}
	a.reporter.Account(sum)

	fmt.Fprintln(a.out, "\n1. Deposit")
	fmt.Fprintln(a.out, "2. Withdraw")
	fmt.Fprintln(a.out, "3. Reset account")
	fmt.Fprintln(a.out, "0. Back")

	choice, ok := a.prompt("> ")
	if !ok {
		return nil
	}

	switch choice {
	case "1":
		amount, err := a.promptFloat("Amount to deposit", 0)
		if err != nil {
			return err
		}
		if err := a.account.Deposit(ctx, amount); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deposited %s\n", report.FormatMoney(amount))
	case "2":
		amount, err := a.promptFloat("Amount to withdraw", 0)
		if err != nil {
			return err
		}
		if err := a.account.Withdraw(ctx, amount); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "withdrew %s\n", report.FormatMoney(amount))
	case "3":
		confirm, _ := a.prompt("Reset the account and clear history? [y/N] ")
		if !strings.EqualFold(confirm, "y") {
			return nil
		}
		if err := a.account.Reset(ctx, a.cfg.Simulation.InitialCash); err != nil {
			return err
		}
		if err := a.results.ClearResults(ctx); err != nil {
			return err
		}
		if err := a.ledger.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "account reset to %s\n", report.FormatMoney(a.cfg.Simulation.InitialCash))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Backtest
// ---------------------------------------------------------------------------

func (a *app) backtestMenu(ctx context.Context) error {
	symbols, err := a.bars.ListSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Fprintln(a.out, "no bar data found; run mockinvest-fetch first")
		return nil
	}

	symbol, ok := a.pick("Symbol", symbols)
	if !ok {
		return nil
	}

	stratName, ok := a.pick("Strategy", a.registry.List())
	if !ok {
		return nil
	}
	strat, found := a.registry.Get(stratName)
	if !found {
		return fmt.Errorf("unknown strategy %q", stratName)
	}

	start, err := a.promptDate("Start date", a.cfg.Market.StartDate)
	if err != nil {
		return err
	}
	end, err := a.promptDate("End date", time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		return err
	}

	bars, err := a.bars.ReadBars(ctx, symbol, start, end.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		fmt.Fprintf(a.out, "no bars for %s in %s ~ %s\n",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
		return nil
	}

	// The persistent account funds the run when it has a balance.
	initialCash := a.cfg.Simulation.InitialCash
	if bal, err := a.account.Balance(ctx); err == nil && bal > 0 {
		initialCash = bal
	}
	initialCash, err = a.promptFloat("Initial cash", initialCash)
	if err != nil {
		return err
	}

	// Execution parameters default to the configured simulation settings but
	// can be overridden per run.
	feeRate, err := a.promptFloat("Fee rate", a.cfg.Simulation.FeeRate)
	if err != nil {
		return err
	}
	cooldown, err := a.promptInt("Cooldown bars", a.cfg.Simulation.CooldownBars)
	if err != nil {
		return err
	}
	orderRatio, err := a.promptFloat("Order ratio", a.cfg.Simulation.OrderRatio)
	if err != nil {
		return err
	}

	res, err := a.runner.Run(ctx, bars, strat, backtest.Params{
		Symbol: symbol,
		Period: fmt.Sprintf("%s ~ %s",
			bars[0].Timestamp.Format("2006-01-02"),
			bars[len(bars)-1].Timestamp.Format("2006-01-02")),
		InitialCash: initialCash,
		Settings: domain.Settings{
			FeeRate:      feeRate,
			CooldownBars: cooldown,
			OrderRatio:   orderRatio,
		},
	})
	if err != nil {
		return err
	}

	a.reporter.Result(res)

	if _, err := a.results.SaveResult(ctx, res); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	fmt.Fprintf(a.out, "\nsaved as result #%d\n", res.ID)

	apply, _ := a.prompt("Apply final equity to the account? [y/N] ")
	if strings.EqualFold(apply, "y") {
		if err := a.account.UpdateBalance(ctx, res.FinalEquity); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "account balance updated to %s\n", report.FormatMoney(res.FinalEquity))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Rankings & history
// ---------------------------------------------------------------------------

func (a *app) historyMenu(ctx context.Context) error {
	ranked, err := a.results.Rankings(ctx, 20)
	if err != nil {
		return err
	}
	a.reporter.Rankings(ranked)

	stats, err := a.results.Statistics(ctx)
	if err != nil {
		return err
	}
	if stats.TotalRuns > 0 {
		fmt.Fprintln(a.out)
		a.reporter.Stats(stats)
	}

	idStr, ok := a.prompt("Result ID for details (empty to go back): ")
	if !ok || idStr == "" {
		return nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid result id %q", idStr)
	}
	res, err := a.results.GetResult(ctx, id)
	if err != nil {
		return err
	}
	a.reporter.Result(res)
	return nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func (a *app) settingsMenu() error {
	fmt.Fprintln(a.out, "\n1. Simulation settings")
	fmt.Fprintln(a.out, "2. Strategy parameters")
	fmt.Fprintln(a.out, "0. Back")

	choice, ok := a.prompt("> ")
	if !ok {
		return nil
	}
	switch choice {
	case "1":
		return a.simulationSettings()
	case "2":
		return a.strategySettings()
	}
	return nil
}

func (a *app) simulationSettings() error {
	sim := &a.cfg.Simulation
	fmt.Fprintln(a.out, "\nCurrent simulation settings:")
	fmt.Fprintf(a.out, "  fee rate:      %v\n", sim.FeeRate)
	fmt.Fprintf(a.out, "  cooldown bars: %d\n", sim.CooldownBars)
	fmt.Fprintf(a.out, "  order ratio:   %v\n", sim.OrderRatio)

	feeRate, err := a.promptFloat("Fee rate", sim.FeeRate)
	if err != nil {
		return err
	}
	cooldown, err := a.promptInt("Cooldown bars", sim.CooldownBars)
	if err != nil {
		return err
	}
	orderRatio, err := a.promptFloat("Order ratio", sim.OrderRatio)
	if err != nil {
		return err
	}

	updated := *a.cfg
	updated.Simulation.FeeRate = feeRate
	updated.Simulation.CooldownBars = cooldown
	updated.Simulation.OrderRatio = orderRatio
	if err := updated.Validate(); err != nil {
		return err
	}

	*a.cfg = updated
	if err := a.cfg.Save(a.cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "settings saved to %s\n", a.cfgPath)
	return nil
}

// strategySettings edits the parameters of one strategy, revalidates the
// whole config, and rebuilds the registry so the next backtest uses the new
// values.
func (a *app) strategySettings() error {
	name, ok := a.pick("Strategy", a.registry.List())
	if !ok {
		return nil
	}

	updated := *a.cfg
	st := &updated.Strategies
	var err error
	switch name {
	case "sma-cross":
		if st.SMACross.Fast, err = a.promptInt("Fast period", st.SMACross.Fast); err != nil {
			return err
		}
		if st.SMACross.Slow, err = a.promptInt("Slow period", st.SMACross.Slow); err != nil {
			return err
		}
	case "ema-cross":
		if st.EMACross.Fast, err = a.promptInt("Fast period", st.EMACross.Fast); err != nil {
			return err
		}
		if st.EMACross.Slow, err = a.promptInt("Slow period", st.EMACross.Slow); err != nil {
			return err
		}
	case "rsi":
		if st.RSI.Period, err = a.promptInt("Period", st.RSI.Period); err != nil {
			return err
		}
		if st.RSI.Oversold, err = a.promptFloat("Oversold threshold", st.RSI.Oversold); err != nil {
			return err
		}
		if st.RSI.Overbought, err = a.promptFloat("Overbought threshold", st.RSI.Overbought); err != nil {
			return err
		}
	case "macd":
		if st.MACD.Fast, err = a.promptInt("Fast period", st.MACD.Fast); err != nil {
			return err
		}
		if st.MACD.Slow, err = a.promptInt("Slow period", st.MACD.Slow); err != nil {
			return err
		}
		if st.MACD.Signal, err = a.promptInt("Signal period", st.MACD.Signal); err != nil {
			return err
		}
	case "bollinger":
		if st.Bollinger.Period, err = a.promptInt("Period", st.Bollinger.Period); err != nil {
			return err
		}
		if st.Bollinger.StdDev, err = a.promptFloat("Std dev multiplier", st.Bollinger.StdDev); err != nil {
			return err
		}
	case "momentum":
		if st.Momentum.Period, err = a.promptInt("Period", st.Momentum.Period); err != nil {
			return err
		}
		if st.Momentum.Threshold, err = a.promptFloat("Threshold", st.Momentum.Threshold); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown strategy %q", name)
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	*a.cfg = updated
	a.registry = builtins.FromConfig(a.cfg.Strategies)
	if err := a.cfg.Save(a.cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "settings saved to %s\n", a.cfgPath)
	return nil
}

// ---------------------------------------------------------------------------
// Prompt helpers
// ---------------------------------------------------------------------------

// prompt prints the label and reads one trimmed line. ok is false when input
// is exhausted.
func (a *app) prompt(label string) (answer string, ok bool) {
	fmt.Fprint(a.out, label)
	if !a.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.scanner.Text()), true
}

// pick shows a numbered list and returns the chosen entry. Entering the name
// itself also works.
func (a *app) pick(label string, options []string) (string, bool) {
	fmt.Fprintf(a.out, "\n%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, opt)
	}
	answer, ok := a.prompt("> ")
	if !ok || answer == "" {
		return "", false
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(opt, answer) {
			return opt, true
		}
	}
	fmt.Fprintf(a.out, "unknown choice %q\n", answer)
	return "", false
}

// promptFloat reads a float with a default shown in the label.
func (a *app) promptFloat(label string, def float64) (float64, error) {
	answer, ok := a.prompt(fmt.Sprintf("%s [%v]: ", label, def))
	if !ok || answer == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", answer)
	}
	return v, nil
}

// promptInt reads an int with a default shown in the label.
func (a *app) promptInt(label string, def int) (int, error) {
	answer, ok := a.prompt(fmt.Sprintf("%s [%d]: ", label, def))
	if !ok || answer == "" {
		return def, nil
	}
	v, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", answer)
	}
	return v, nil
}

// promptDate reads a YYYY-MM-DD date with a default.
func (a *app) promptDate(label, def string) (time.Time, error) {
	answer, ok := a.prompt(fmt.Sprintf("%s [%s]: ", label, def))
	if !ok || answer == "" {
		answer = def
	}
	t, err := time.Parse("2006-01-02", answer)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", answer)
	}
	return t, nil
}
