package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(func() float64 { return 7 })

	m.Rejected("status_change", "ILLEGAL_TRANSITION")
	m.Rejected("status_change", "ILLEGAL_TRANSITION")
	m.Accepted("role_change")
	m.Buffered("task_update")
	m.RecalcRun(10, 3, 1, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejections.WithLabelValues("status_change", "ILLEGAL_TRANSITION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("role_change")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.mutations.WithLabelValues("task_update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deferred.WithLabelValues("task_update")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.recalcRecords.WithLabelValues("unchanged")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recalcRecords.WithLabelValues("touched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recalcRecords.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.recalcLastRun))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.bufferSize))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Rejected("x", "y")
		m.Accepted("x")
		m.Buffered("x")
		m.RecalcRun(1, 1, 0, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.Rejected("task_update", "FORBIDDEN")

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/metrics")
	m.Handler()(&ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `tasktrack_lifecycle_rejections_total{code="FORBIDDEN",operation="task_update"} 1`)
}
