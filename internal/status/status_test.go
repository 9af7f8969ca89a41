package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSummaryDegradesOnFailingProbe(t *testing.T) {
	c := NewChecker(time.Minute)
	c.Register("cms", func(context.Context) error { return errors.New("cms: GET http://cms/api/: 503") })
	c.Register("echo_cache", func(context.Context) error { return nil })

	s := c.FetchSummary(context.Background())
	require.Equal(t, StateDegraded, s.State)
	require.Len(t, s.Components, 2)
	require.Equal(t, "cms", s.Components[0].Name)
	require.Equal(t, StateDegraded, s.Components[0].Status)
	require.Contains(t, s.Components[0].Error, "503")
	require.Equal(t, StateOperational, s.Components[1].Status)
}

func TestSummaryIsCached(t *testing.T) {
	var calls atomic.Int32
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewChecker(time.Minute)
	c.now = func() time.Time { return now }
	c.Register("cms", func(context.Context) error { calls.Add(1); return nil })

	c.FetchSummary(context.Background())
	c.FetchSummary(context.Background())
	require.EqualValues(t, 1, calls.Load())

	now = now.Add(2 * time.Minute)
	c.FetchSummary(context.Background())
	require.EqualValues(t, 2, calls.Load())
}

func TestHandlerStatusCodes(t *testing.T) {
	healthy := NewChecker(time.Minute)
	healthy.Register("cms", func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, StateOperational, body.State)

	broken := NewChecker(time.Minute)
	broken.Register("cms", func(context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	broken.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
