package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStoreQueryCountsOnlyErrors(t *testing.T) {
	counter := DefaultMetrics.StoreQueryErrors.WithLabelValues("postgres", "load")
	before := testutil.ToFloat64(counter)

	RecordStoreQuery("postgres", "load", 0.01, nil)
	assert.Equal(t, before, testutil.ToFloat64(counter))

	RecordStoreQuery("postgres", "load", 0.01, errors.New("connection reset"))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordCachedRowsSetsGauge(t *testing.T) {
	RecordCachedRows("BTC", 365)
	assert.Equal(t, 365.0, testutil.ToFloat64(DefaultMetrics.CachedPriceRows.WithLabelValues("BTC")))

	RecordCachedRows("BTC", 366)
	assert.Equal(t, 366.0, testutil.ToFloat64(DefaultMetrics.CachedPriceRows.WithLabelValues("BTC")))
}

func TestRecordAPILatencyTracksEndpoints(t *testing.T) {
	before := testutil.CollectAndCount(DefaultMetrics.APICallLatency)
	RecordAPILatency("ping", 0.05)
	assert.Equal(t, before+1, testutil.CollectAndCount(DefaultMetrics.APICallLatency))
}
