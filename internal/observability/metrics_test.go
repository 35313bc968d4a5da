package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics("test_apartments", reg), reg
}

func TestNewMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.HTTPRateLimited)
	assert.NotNil(t, m.ApartmentsCreated)
	assert.NotNil(t, m.ValidationFailures)
	assert.NotNil(t, m.DuplicatesRejected)

	// Registering the same names twice on one registry must fail.
	assert.Panics(t, func() { NewMetrics("test_apartments", reg) })
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTPRequest("GET", "/apartments", 200, 0.012)
	m.RecordHTTPRequest("GET", "/apartments", 200, 0.020)
	m.RecordHTTPRequest("GET", "/apartments/{id}", 404, 0.001)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/apartments", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/apartments/{id}", "404")))

	count, err := getHistogramSampleCount(m.HTTPRequestDuration.WithLabelValues("GET", "/apartments").(prometheus.Histogram))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRecordApartmentCounters(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordApartmentCreated()
	m.RecordDuplicateRejected()
	m.RecordRateLimited()
	m.RecordValidationFailure("price")
	m.RecordValidationFailure("price")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ApartmentsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicatesRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRateLimited))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValidationFailures.WithLabelValues("price")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/health", 200, 0.01)
		m.RecordRateLimited()
		m.RecordApartmentCreated()
		m.RecordValidationFailure("area")
		m.RecordDuplicateRejected()
	})
}

// getHistogramSampleCount extracts the sample count from a histogram.
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var metric = &dto.Metric{}
	if err := m.Write(metric); err != nil {
		return 0, err
	}

	return metric.Histogram.GetSampleCount(), nil
}
