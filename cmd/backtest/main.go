package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/domain"
	"grid-trade-lab/internal/exchange"
	"grid-trade-lab/internal/marketdata"
	"grid-trade-lab/internal/observability"
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
	strategyName := flag.String("strategy", "", "Strategy: naive-grid, optimistic-grid, cost-basis-grid, hodl, buy-and-hodl (required)")

	// Strategy parameters
	buyThreshold := flag.Float64("buy-threshold", 10, "Buy when price drops this % below the reference")
	sellThreshold := flag.Float64("sell-threshold", 10, "Sell when price rises this % above the reference")
	tradePercentage := flag.Float64("trade-percentage", 50, "Portion of holdings to trade (naive-grid)")
	buyPercentage := flag.Float64("buy-percentage", 50, "Portion of cash to spend per buy")
	sellPercentage := flag.Float64("sell-percentage", 50, "Portion of coins to sell per sell")
	costBasis := flag.Float64("cost-basis", 0, "Seed cost basis for starting coins (cost-basis-grid)")
	paperHands := flag.Bool("paper-hands", false, "Invert the policy: buy high, sell low")

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
	outputJSON := flag.Bool("json", false, "Output as JSON")
	tradesCSV := flag.Bool("trades-csv", false, "Also print trades as CSV")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *symbol == "" {
		logger.Fatal("--symbol is required")
	}
	if *strategyName == "" {
		logger.Fatal("--strategy is required")
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

	exch := exchange.Exchange{Name: "Custom", TradingFeePercentage: *feePercentage}
	if *feePercentage == exchange.CoinbasePro.TradingFeePercentage {
		exch = exchange.CoinbasePro
	} else if *feePercentage == 0 {
		exch = exchange.Free
	}

	s, err := buildStrategy(c, *strategyName, strategyParams{
		buyThreshold:    *buyThreshold,
		sellThreshold:   *sellThreshold,
		tradePercentage: *tradePercentage,
		buyPercentage:   *buyPercentage,
		sellPercentage:  *sellPercentage,
		costBasis:       *costBasis,
		costBasisSet:    flagWasSet("cost-basis"),
		hasPaperHands:   *paperHands,
	})
	if err != nil {
		logger.Fatalf("build strategy: %v", err)
	}

	input := strategy.BacktestInput{
		CoinAmount: *coinAmount,
		CashAmount: *cashAmount,
		Exchange:   exch,
	}
	if input.StartDate, err = parseDate(*startDateArg); err != nil {
		logger.Fatalf("parse --start-date: %v", err)
	}
	if input.EndDate, err = parseDate(*endDateArg); err != nil {
		logger.Fatalf("parse --end-date: %v", err)
	}

	logger.Printf("Running backtest: coin=%s strategy=%s", *symbol, s.Name())

	started := time.Now()
	results, err := strategy.Backtest(ctx, s, input)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}
	observability.RecordBacktest(s.Name(), len(results.Trades), time.Since(started).Seconds())

	if *outputJSON {
		printJSON(logger, s.Name(), results)
	} else {
		fmt.Println(reporting.Description(results))
	}
	if *tradesCSV {
		fmt.Println()
		fmt.Print(reporting.RenderTradesCSV(results.Trades))
	}
}

// printJSON outputs backtest results as JSON with the derived figures
// flattened in.
func printJSON(logger *log.Logger, strategyName string, r *strategy.BacktestResults) {
	out := struct {
		Strategy         string         `json:"strategy"`
		Coin             string         `json:"coin"`
		StartingValue    float64        `json:"startingValue"`
		EndingValue      float64        `json:"endingValue"`
		Profit           float64        `json:"profit"`
		PercentageYield  float64        `json:"percentageYield"`
		Multiplier       float64        `json:"multiplier"`
		IsProfitable     bool           `json:"isProfitable"`
		EndingCoinAmount float64        `json:"endingCoinAmount"`
		EndingCashAmount float64        `json:"endingCashAmount"`
		DaysTraded       int            `json:"daysTraded"`
		Trades           []domain.Trade `json:"trades"`
	}{
		Strategy:         strategyName,
		Coin:             r.Coin.Symbol,
		StartingValue:    r.StartingValue(),
		EndingValue:      r.EndingValue(),
		Profit:           r.Profit(),
		PercentageYield:  r.PercentageYield(),
		Multiplier:       r.Multiplier(),
		IsProfitable:     r.IsProfitable(),
		EndingCoinAmount: r.EndingCoinAmount,
		EndingCashAmount: r.EndingCashAmount,
		DaysTraded:       r.DaysTraded(),
		Trades:           r.Trades,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatalf("encode results: %v", err)
	}
	fmt.Println(string(data))
}

type strategyParams struct {
	buyThreshold    float64
	sellThreshold   float64
	tradePercentage float64
	buyPercentage   float64
	sellPercentage  float64
	costBasis       float64
	costBasisSet    bool
	hasPaperHands   bool
}

// buildStrategy creates the named strategy from CLI parameters.
func buildStrategy(c *coin.Coin, name string, p strategyParams) (strategy.Strategy, error) {
	switch strings.ToLower(name) {
	case "naive-grid":
		return strategy.NewNaiveGrid(c, p.buyThreshold, p.sellThreshold, p.tradePercentage, p.hasPaperHands)
	case "optimistic-grid":
		return strategy.NewOptimisticGrid(c, p.buyThreshold, p.sellThreshold, p.buyPercentage, p.sellPercentage, p.hasPaperHands)
	case "cost-basis-grid":
		var basis *float64
		if p.costBasisSet {
			basis = &p.costBasis
		}
		return strategy.NewCostBasisGrid(c, p.buyThreshold, p.sellThreshold, p.buyPercentage, p.sellPercentage, p.hasPaperHands, basis)
	case "hodl":
		return strategy.NewHodl(c), nil
	case "buy-and-hodl":
		return strategy.NewBuyAndHodl(c), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
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

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
