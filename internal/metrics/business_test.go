package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric
// matching the given name, partial label pattern, and value. Uses regex to
// handle extra OTel scope labels injected by the exporter.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	return string(body)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("pii_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "pii_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "privacy", "pii_intake", "success")
	bm.RecordOperation(ctx, "privacy", "pii_intake", "success")
	bm.RecordOperation(ctx, "lifecycle", "anonymize_sweep", "error")

	output := scrape(t, provider)
	assertMetricLine(t, output, "pii_test_operations_total",
		`operation="pii_intake"`, "2")
	assertMetricLine(t, output, "pii_test_operations_total",
		`operation="anonymize_sweep"`, "1")
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("pii_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "pii_test")
	require.NoError(t, err)

	bm.RecordDuration(context.Background(), "privacy", "pii_export", 150*time.Millisecond, "success")

	output := scrape(t, provider)
	assert.Contains(t, output, "pii_test_operation_duration_seconds")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// Must be safe to call without a provider.
	bm.RecordOperation(context.Background(), "privacy", "pii_intake", "success")
	bm.RecordDuration(context.Background(), "privacy", "pii_intake", time.Second, "success")
}
