package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
}

func TestNewLoggerAcceptsUnknownLevel(t *testing.T) {
	logger, err := NewLogger("chatty")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetricsCountCMSOutcomes(t *testing.T) {
	m := NewMetrics()
	m.ObserveCMS("news", OutcomeOK, 20*time.Millisecond)
	m.ObserveCMS("news", OutcomeOK, 10*time.Millisecond)
	m.ObserveCMS("news", OutcomeError, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.CMSRequests.WithLabelValues("news", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CMSRequests.WithLabelValues("news", OutcomeError)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), "piriven_cms_requests_total")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCMS("news", OutcomeOK, time.Second)
	m.SectionFailed("home", "videos")
	m.EchoLookup("news", true)
	m.ObserveHTTP("/", 200, time.Second)
}
