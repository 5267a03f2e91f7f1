package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stepmill/stepmill/pkg/domain"
)

// Metrics holds the Prometheus collectors for one engine.
type Metrics struct {
	stateVisits   *prometheus.CounterVec
	stateDuration *prometheus.HistogramVec
	taskDuration  *prometheus.HistogramVec
	executions    *prometheus.CounterVec
}

// NewMetrics creates the collectors. Call MustRegister to attach them to a
// registry, then install Hooks() on the engine.
func NewMetrics() *Metrics {
	return &Metrics{
		stateVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepmill_state_visits_total",
				Help: "Total number of state visits",
			},
			[]string{"state", "type"},
		),
		stateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "stepmill_state_duration_seconds",
				Help: "Duration of state executions",
			},
			[]string{"state"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "stepmill_task_duration_seconds",
				Help: "Duration of task handler invocations",
			},
			[]string{"resource"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepmill_executions_total",
				Help: "Total number of finished executions by status",
			},
			[]string{"status"},
		),
	}
}

// MustRegister registers every collector with the given registerer.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.stateVisits, m.stateDuration, m.taskDuration, m.executions)
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.stateVisits.WithLabelValues(e.StateName, string(e.StateType)).Inc()
		},
		OnStateExit: func(_ context.Context, e *domain.StateEvent) {
			m.stateDuration.WithLabelValues(e.StateName).Observe(e.Duration.Seconds())
		},
		OnTaskReturn: func(_ context.Context, e *domain.TaskEvent) {
			m.taskDuration.WithLabelValues(e.Resource).Observe(e.Duration.Seconds())
		},
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			m.executions.WithLabelValues(string(e.Status)).Inc()
		},
	}
}
