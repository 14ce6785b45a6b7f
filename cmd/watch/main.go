package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grid-trade-lab/internal/marketdata"
	"grid-trade-lab/internal/observability"
)

func main() {
	// Parse flags
	feedURL := flag.String("feed-url", os.Getenv("TICKER_FEED_URL"), "WebSocket ticker feed URL, e.g. wss://host/feed (required)")
	symbolsArg := flag.String("symbols", "", "Comma-separated ticker symbols, e.g. BTC,ETH (required)")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :9090")

	// Grid trigger alerts
	reference := flag.Float64("reference", 0, "Reference price for grid trigger alerts (0 disables)")
	buyThreshold := flag.Float64("buy-threshold", 10, "Alert when price drops this % below the reference")
	sellThreshold := flag.Float64("sell-threshold", 10, "Alert when price rises this % above the reference")

	flag.Parse()

	logger := log.New(os.Stderr, "[watch] ", log.LstdFlags)

	if *feedURL == "" {
		logger.Fatal("--feed-url is required")
	}
	symbols := splitSymbols(*symbolsArg)
	if len(symbols) == 0 {
		logger.Fatal("--symbols is required")
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

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		server := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			logger.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server: %v", err)
			}
		}()
		defer server.Close()
	}

	ticker, err := marketdata.NewTicker(ctx, *feedURL, nil)
	if err != nil {
		logger.Fatalf("connect to feed: %v", err)
	}
	defer ticker.Close()

	if err := ticker.Subscribe(symbols...); err != nil {
		logger.Fatalf("subscribe: %v", err)
	}

	var buyPrice, sellPrice float64
	if *reference > 0 {
		buyPrice = roundToCents(*reference * (1 - *buyThreshold/100))
		sellPrice = roundToCents(*reference * (1 + *sellThreshold/100))
		logger.Printf("Grid triggers: buy at $%v, sell at $%v", buyPrice, sellPrice)
	}

	logger.Printf("Watching %s", strings.Join(symbols, ", "))

	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticker.Ticks():
			if !ok {
				return
			}
			observability.RecordTick(tick.Symbol, float64(time.Now().Unix()))
			fmt.Printf("%s  %s  $%v\n", tick.Time.Format(time.RFC3339), tick.Symbol, tick.Price)

			if *reference > 0 {
				switch {
				case tick.Price <= buyPrice:
					logger.Printf("%s crossed the buy trigger $%v at $%v", tick.Symbol, buyPrice, tick.Price)
				case tick.Price >= sellPrice:
					logger.Printf("%s crossed the sell trigger $%v at $%v", tick.Symbol, sellPrice, tick.Price)
				}
			}
		}
	}
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
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
