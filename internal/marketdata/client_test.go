package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-trade-lab/internal/domain"
)

func midnightMillis(t time.Time) int64 {
	return domain.Day(t).UnixMilli()
}

func newTestServer(t *testing.T, chartHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "BTC" {
			fmt.Fprint(w, `{"coins":[]}`)
			return
		}
		fmt.Fprint(w, `{"coins":[{"id":"bitcoin","symbol":"BTC"}]}`)
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", chartHandler)

	return httptest.NewServer(mux)
}

func TestDailyClosingPricesFullHistory(t *testing.T) {
	d1 := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC)
	intraday := d2.Add(9*time.Hour + 30*time.Minute)

	var gotDays string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		fmt.Fprintf(w, `{"prices":[[%d,100],[%d,110],[%d,115.5]]}`,
			midnightMillis(d1), midnightMillis(d2), intraday.UnixMilli())
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	prices, err := client.DailyClosingPrices(context.Background(), "BTC", nil)
	require.NoError(t, err)

	assert.Equal(t, "max", gotDays)
	require.Len(t, prices, 2, "intraday points should be filtered out")
	assert.Equal(t, d1, prices[0].Date)
	assert.Equal(t, 100.0, prices[0].Price)
	assert.Equal(t, d2, prices[1].Date)
	assert.Equal(t, 110.0, prices[1].Price)
}

func TestDailyClosingPricesFromDate(t *testing.T) {
	var gotDays string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		fmt.Fprint(w, `{"prices":[]}`)
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	from := domain.Day(time.Now().UTC()).AddDate(0, 0, -3)
	_, err := client.DailyClosingPrices(context.Background(), "BTC", &from)
	require.NoError(t, err)

	assert.Equal(t, "4", gotDays)
}

func TestDailyClosingPricesFutureFromDate(t *testing.T) {
	var gotDays string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		fmt.Fprint(w, `{"prices":[]}`)
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	from := time.Now().UTC().AddDate(0, 0, 7)
	prices, err := client.DailyClosingPrices(context.Background(), "BTC", &from)
	require.NoError(t, err)

	assert.Equal(t, "0", gotDays)
	assert.Empty(t, prices)
}

func TestDailyClosingPricesUnknownSymbol(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("market chart should not be fetched for an unresolved symbol")
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(0))
	_, err := client.DailyClosingPrices(context.Background(), "DOGE", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve coin id for DOGE")
}

func TestDailyClosingPricesSymbolMismatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"coins":[{"id":"bitcoin","symbol":"BTC"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(0))
	_, err := client.DailyClosingPrices(context.Background(), "XBT", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve coin id for XBT")
}

func TestGetRetriesOnServerError(t *testing.T) {
	var attempts int
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"coins":[{"id":"bitcoin","symbol":"BTC"}]}`)
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.DailyClosingPrices(context.Background(), "BTC", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestGetExhaustsRetries(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.DailyClosingPrices(context.Background(), "BTC", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestGetRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithMaxRetries(5),
		WithRetryDelay(time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.DailyClosingPrices(ctx, "BTC", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
