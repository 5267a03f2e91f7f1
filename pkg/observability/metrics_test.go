package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmill/stepmill/pkg/domain"
)

func TestMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NotPanics(t, func() { m.MustRegister(reg) })
}

func TestMetrics_HooksRecordEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	m.MustRegister(reg)
	hooks := m.Hooks()

	ctx := context.Background()

	hooks.OnStateEnter(ctx, &domain.StateEvent{StateName: "Fetch", StateType: domain.StateTask})
	hooks.OnStateEnter(ctx, &domain.StateEvent{StateName: "Fetch", StateType: domain.StateTask})
	hooks.OnStateExit(ctx, &domain.StateEvent{StateName: "Fetch", StateType: domain.StateTask, Duration: 50 * time.Millisecond})
	hooks.OnTaskReturn(ctx, &domain.TaskEvent{StateName: "Fetch", Resource: "fetch-user", Duration: 40 * time.Millisecond})
	hooks.OnExecutionEnd(ctx, &domain.ExecutionEvent{Status: domain.StatusSucceeded})
	hooks.OnExecutionEnd(ctx, &domain.ExecutionEvent{Status: domain.StatusFailed})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.stateVisits.WithLabelValues("Fetch", "Task")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.executions.WithLabelValues("succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.executions.WithLabelValues("failed")))

	assert.Equal(t, 4, testutil.CollectAndCount(reg,
		"stepmill_state_visits_total",
		"stepmill_state_duration_seconds",
		"stepmill_task_duration_seconds",
		"stepmill_executions_total"))
}
