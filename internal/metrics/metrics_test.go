// ABOUTME: Tests for the metrics registry and exposition handler.
// ABOUTME: Checks that registered collectors show up in the scrape output.
package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesCollectors(t *testing.T) {
	CyclesTotal.WithLabelValues("posted").Inc()
	HistoryResetsTotal.Inc()
	SourceFetchFailures.WithLabelValues("wordpress").Inc()
	PublishDuration.Observe(0.2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"riddleking_cycles_total",
		"riddleking_history_resets_total",
		"riddleking_source_fetch_failures_total",
		"riddleking_publish_duration_seconds",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in scrape output", name)
		}
	}
}

func TestCycleCounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(CyclesTotal.WithLabelValues("skipped"))
	CyclesTotal.WithLabelValues("skipped").Inc()
	after := testutil.ToFloat64(CyclesTotal.WithLabelValues("skipped"))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}
}
