package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grid-trade-lab/internal/coin"
	"grid-trade-lab/internal/marketdata"
	"grid-trade-lab/internal/observability"
	"grid-trade-lab/internal/storage"
	chstore "grid-trade-lab/internal/storage/clickhouse"
	"grid-trade-lab/internal/storage/csvfile"
	pgstore "grid-trade-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	symbolsArg := flag.String("symbols", "", "Comma-separated ticker symbols, e.g. BTC,ETH (required)")

	// Storage
	apiURL := flag.String("api-url", marketdata.DefaultBaseURL, "Market data API base URL")
	dataDir := flag.String("data-dir", "", "Directory for CSV price cache")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	timeout := flag.Duration("timeout", 5*time.Minute, "Overall fetch timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags)

	symbols := splitSymbols(*symbolsArg)
	if len(symbols) == 0 {
		logger.Fatal("--symbols is required")
	}
	if *dataDir == "" && *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("one of --data-dir, --postgres-dsn, or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
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

	failed := 0
	for _, symbol := range symbols {
		c := coin.NewCoin(symbol, symbol, source, store)

		logger.Printf("Fetching prices: coin=%s", symbol)

		added, err := c.UpdatePriceHistory(ctx)
		if err != nil {
			observability.RecordFetchError(symbol)
			logger.Printf("fetch failed for %s: %v", symbol, err)
			failed++
			continue
		}
		observability.RecordPricesFetched(symbol, len(added))

		if len(added) == 0 {
			logger.Printf("Cache is already up to date for %s", symbol)
			continue
		}

		logger.Printf("Cached %d new daily prices for %s (%s to %s)",
			len(added), symbol,
			added[0].Date.Format("2006-01-02"),
			added[len(added)-1].Date.Format("2006-01-02"))
	}

	if failed > 0 {
		logger.Fatalf("%d of %d symbols failed", failed, len(symbols))
	}
}

func splitSymbols(arg string) []string {
	var symbols []string
	for _, part := range strings.Split(arg, ",") {
		symbol := strings.TrimSpace(part)
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

// buildPriceStore selects a price store backend from CLI flags.
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

	default:
		return csvfile.NewPriceStore(dataDir), func() {}, nil
	}
}
