package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/marketdata"
	"grid-trade-lab/internal/observability"
	"grid-trade-lab/internal/param"
	"grid-trade-lab/internal/reporting"
	"grid-trade-lab/internal/storage"
	chstore "grid-trade-lab/internal/storage/clickhouse"
	"grid-trade-lab/internal/storage/csvfile"
	"grid-trade-lab/internal/storage/memory"
	pgstore "grid-trade-lab/internal/storage/postgres"
	"grid-trade-lab/internal/strategy"
)

func main() {
	// Parse flags
	symbol := flag.String("symbol", "", "Coin ticker symbol, e.g. BTC (required)")
	name := flag.String("name", "", "Coin display name (defaults to symbol)")
	strategyName := flag.String("strategy", "", "Strategy: naive-grid, optimistic-grid, cost-basis-grid (required)")
	paperHands := flag.Bool("paper-hands", false, "Invert the policy: buy high, sell low")

	ranges := map[string]param.Range{}
	flag.Func("range", "Sweep range as name=min:max:step (repeatable)", func(arg string) error {
		parameter, r, err := parseRange(arg)
		if err != nil {
			return err
		}
		ranges[parameter] = r
		return nil
	})

	// Holdings and market
	coinAmount := flag.Float64("coin-amount", 0, "Starting coin amount")
	cashAmount := flag.Float64("cash-amount", 1000, "Starting cash amount")
	feePercentage := flag.Float64("fee-percentage", 0.5, "Exchange trading fee percentage")
	startDateArg := flag.String("start-date", "", "Backtest start date (YYYY-MM-DD)")
	endDateArg := flag.String("end-date", "", "Backtest end date (YYYY-MM-DD)")

	// Storage
	apiURL := flag.String("api-url", marketdata.DefaultBaseURL, "Market data API base URL")
	dataDir := flag.String("data-dir", "", "Directory for CSV price cache")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	// Output
	projection := flag.String("projection", "", "Also print a chart projection as JSON: grid, scatter")
	output := flag.String("output", "", "Write the Markdown report to a file instead of stdout")

	flag.Parse()

	logger := log.New(os.Stderr, "[optimize] ", log.LstdFlags)

	if *symbol == "" {
		logger.Fatal("--symbol is required")
	}
	if *strategyName == "" {
		logger.Fatal("--strategy is required")
	}
	if len(ranges) == 0 {
		logger.Fatal("at least one --range is required")
	}
	if *name == "" {
		*name = *symbol
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	store, closeStore, err := buildPriceStore(ctx, *dataDir, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("set up price store: %v", err)
	}
	defer closeStore()

	source := marketdata.NewClient(marketdata.WithBaseURL(*apiURL))
	c := coin.NewCoin(*name, *symbol, source, store)

	s, err := buildStrategy(c, *strategyName, *paperHands)
	if err != nil {
		logger.Fatalf("build strategy: %v", err)
	}

	input := strategy.OptimizeInput{
		BacktestInput: strategy.BacktestInput{
			CoinAmount: *coinAmount,
			CashAmount: *cashAmount,
			Exchange:   exchange.Exchange{Name: "Custom", TradingFeePercentage: *feePercentage},
		},
		ParameterRanges: ranges,
	}
	if input.StartDate, err = parseDate(*startDateArg); err != nil {
		logger.Fatalf("parse --start-date: %v", err)
	}
	if input.EndDate, err = parseDate(*endDateArg); err != nil {
		logger.Fatalf("parse --end-date: %v", err)
	}

	logger.Printf("Running optimization: coin=%s strategy=%s parameters=%d", *symbol, s.Name(), len(ranges))

	results, err := strategy.Optimize(ctx, s, input)
	if err != nil {
		logger.Fatalf("optimization failed: %v", err)
	}
	observability.RecordOptimization(s.Name(), len(results.All))

	logger.Printf("Tested %d combinations; best profit $%s",
		len(results.All), reporting.FormatNumber(results.Best().BacktestResults.Profit(), 2))

	markdown := reporting.RenderMarkdown(s.Name(), results)
	if *output != "" {
		if err := os.WriteFile(*output, []byte(markdown), 0o644); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("Wrote report to %s", *output)
	} else {
		fmt.Print(markdown)
	}

	switch strings.ToLower(*projection) {
	case "":
	case "grid":
		p, err := results.GridProjection()
		if err != nil {
			logger.Fatalf("grid projection: %v", err)
		}
		printJSON(logger, p)
	case "scatter":
		p, err := results.ScatterProjection()
		if err != nil {
			logger.Fatalf("scatter projection: %v", err)
		}
		printJSON(logger, p)
	default:
		logger.Fatalf("unknown projection %q, must be grid or scatter", *projection)
	}
}

// buildStrategy creates the named strategy with neutral parameters; the
// sweep supplies the real values per combination.
func buildStrategy(c *coin.Coin, name string, hasPaperHands bool) (strategy.Strategy, error) {
	switch strings.ToLower(name) {
	case "naive-grid":
		return strategy.NewNaiveGrid(c, 10, 10, 50, hasPaperHands)
	case "optimistic-grid":
		return strategy.NewOptimisticGrid(c, 10, 10, 50, 50, hasPaperHands)
	case "cost-basis-grid":
		return strategy.NewCostBasisGrid(c, 10, 10, 50, 50, hasPaperHands, nil)
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// parseRange parses a sweep flag of the form name=min:max:step.
func parseRange(arg string) (string, param.Range, error) {
	name, spec, ok := strings.Cut(arg, "=")
	if !ok {
		return "", param.Range{}, fmt.Errorf("range %q must look like name=min:max:step", arg)
	}

	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", param.Range{}, fmt.Errorf("range %q must look like name=min:max:step", arg)
	}

	values := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return "", param.Range{}, fmt.Errorf("range %q: bad number %q", arg, part)
		}
		values[i] = v
	}

	return name, param.Range{Minimum: values[0], Maximum: values[1], Step: values[2]}, nil
}

// buildPriceStore selects a price store backend from CLI flags. Falls back
// to in-memory storage when no backend is configured.
func buildPriceStore(ctx context.Context, dataDir, postgresDSN, clickhouseDSN string) (storage.PriceStore, func(), error) {
	switch {
	case postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pgstore.NewPriceStore(pool), pool.Close, nil

	case clickhouseDSN != "":
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := conn.Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		return chstore.NewPriceStore(conn), func() { conn.Close() }, nil

	case dataDir != "":
		return csvfile.NewPriceStore(dataDir), func() {}, nil

	default:
		return memory.NewPriceStore(), func() {}, nil
	}
}

func parseDate(arg string) (*time.Time, error) {
	if arg == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", arg)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func printJSON(logger *log.Logger, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("encode projection: %v", err)
	}
	fmt.Println(string(data))
}
