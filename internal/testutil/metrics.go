package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
)

// NewTelemetryRecorder returns an otel-backed recorder and the Prometheus handler it exports to.
// The meter provider shuts down when the test ends.
func NewTelemetryRecorder(t testing.TB) (*metrics.Recorder, http.Handler) {
	t.Helper()
	rec, handler, shutdown, err := metrics.Setup(context.Background(), metrics.TelemetryConfig{
		Enabled:     true,
		ServiceName: "contrib-widget-service-test",
	})
	if err != nil {
		t.Fatalf("metrics setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return rec, handler
}
