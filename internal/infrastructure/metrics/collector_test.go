package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ims-storefront-bridge/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_InstallAndProducts(t *testing.T) {
	c := NewCollector()

	c.InstallTransition(domain.InstallStateStartRequested)
	c.InstallTransition(domain.InstallStateRejected)
	c.InstallTransition(domain.InstallStateRejected)
	c.ProductSynced(domain.SyncStatusCreated)
	c.ProductSynced(domain.SyncStatusSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.installTransitions.WithLabelValues("REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.installTransitions.WithLabelValues("START_REQUESTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.productsSynced.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.productsSynced.WithLabelValues("failed")))
}

func TestCollector_SyncRunFinished(t *testing.T) {
	c := NewCollector()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	c.SyncRunFinished(&domain.SyncReport{SellerNumber: "S-1", StartedAt: started, FinishedAt: started.Add(time.Minute)}, nil)
	c.SyncRunFinished(&domain.SyncReport{SellerNumber: "S-1", StartedAt: started, FinishedAt: started.Add(time.Minute), Failed: 2}, nil)
	c.SyncRunFinished(nil, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.syncRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.syncRuns.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.syncRuns.WithLabelValues("error")))
	assert.Equal(t, float64(started.Add(time.Minute).Unix()), testutil.ToFloat64(c.lastSuccess.WithLabelValues("S-1")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.syncRunDuration, MetricSyncRunDurationSeconds))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ProductSynced(domain.SyncStatusCreated)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bridge_products_synced_total{status="created"} 1`)
}
