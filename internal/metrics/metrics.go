// Package metrics exposes board activity to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jask/kanban/internal/board"
)

// Collector owns the board metrics on its own registry.
type Collector struct {
	Registry *prometheus.Registry

	notifications   prometheus.Counter
	columnTasks     *prometheus.GaugeVec
	columns         prometheus.Gauge
	persistErrors   prometheus.Counter
	persistDuration prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kanban_board_notifications_total",
			Help: "Total number of board change notifications",
		}),
		columnTasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kanban_board_column_tasks",
			Help: "Tasks currently in each column",
		}, []string{"column"}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kanban_board_columns",
			Help: "Columns currently on the board",
		}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kanban_persist_errors_total",
			Help: "Total number of failed snapshot writes",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kanban_persist_duration_seconds",
			Help:    "Snapshot write latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	c.Registry.MustRegister(c.notifications, c.columnTasks, c.columns, c.persistErrors, c.persistDuration)
	return c
}

// Watch registers a listener on s that refreshes the board gauges.
func (c *Collector) Watch(s *board.Store) (remove func()) {
	c.refresh(s)
	return s.AddListener(func() {
		c.notifications.Inc()
		c.refresh(s)
	})
}

func (c *Collector) refresh(s *board.Store) {
	c.columns.Set(float64(len(s.Labels())))
	c.columnTasks.Reset()
	for label, n := range s.TaskCounts() {
		c.columnTasks.WithLabelValues(label).Set(float64(n))
	}
}

// ObservePersist is shaped for board.WithPersistObserver.
func (c *Collector) ObservePersist(d time.Duration, err error) {
	if err != nil {
		c.persistErrors.Inc()
		return
	}
	c.persistDuration.Observe(d.Seconds())
}
