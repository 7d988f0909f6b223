package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

func TestRecordRequest_Counts(t *testing.T) {
	r := NewWithRegistry("test", prometheus.NewRegistry())

	r.RecordRequest("ask", driven.StatusSuccess, 120*time.Millisecond)
	r.RecordRequest("ask", driven.StatusSuccess, 80*time.Millisecond)
	r.RecordRequest("ask", driven.StatusError, time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(r.requestCount.WithLabelValues("ask", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.requestCount.WithLabelValues("ask", "error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(r.requestCount))
}

func TestRecordRequest_Histogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := NewWithRegistry("", registry)

	r.RecordRequest("search", driven.StatusSuccess, 250*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	var histogram *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "kbrag_request_duration_seconds" {
			histogram = f
		}
	}
	require.NotNil(t, histogram)
	require.Len(t, histogram.GetMetric(), 1)

	h := histogram.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), h.GetSampleCount())
	assert.InDelta(t, 0.25, h.GetSampleSum(), 1e-9)
}

func TestHandler(t *testing.T) {
	r := New("kbrag")
	r.RecordRequest("ask", driven.StatusSuccess, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `kbrag_requests_total{operation="ask",status="success"} 1`)
}
