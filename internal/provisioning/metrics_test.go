package provisioning

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordTransaction("create-vm", OutcomeCommitted, 2*time.Second)
	m.RecordTransaction("create-vm", OutcomeCommitted, time.Second)
	m.RecordRollbackStep("ipam/ip-addresses", "deleted")
	m.RecordAllocationConflict("MAC address")

	counter, err := m.transactionsTotal.GetMetricWithLabelValues("create-vm", OutcomeCommitted)
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rollbackStepsTotal.WithLabelValues("ipam/ip-addresses", "deleted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.allocationConflicts.WithLabelValues("MAC address")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.transactionDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	m.RecordTransaction("create-vm", OutcomeFailed, time.Second)
	m.RecordRollbackStep("x", "failed")
	m.RecordAllocationConflict("slot")
	assert.NoError(t, m.Push(context.Background(), "http://unused", "nbctl"))
}

func TestMetrics_Push(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		body = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics()
	m.RecordTransaction("create-vm", OutcomeRolledBack, time.Second)

	require.NoError(t, m.Push(context.Background(), server.URL, "nbctl"))
	assert.Equal(t, "/metrics/job/nbctl", path)
	assert.NotEmpty(t, body)
}

func TestMetrics_PushError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewMetrics().Push(context.Background(), server.URL, "nbctl")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
