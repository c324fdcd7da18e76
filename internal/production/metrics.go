package production

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/riskbox/internal/core"
)

// Metrics records runtime activity as Prometheus series. It implements
// core.Observer; pass it with core.WithObserver.
type Metrics struct {
	transitions *prometheus.CounterVec
	unhandled   *prometheus.CounterVec
	spawned     *prometheus.CounterVec
	stopped     *prometheus.CounterVec
	active      *prometheus.GaugeVec
	timers      prometheus.Counter
	dispatch    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbox_transitions_total",
			Help: "State transitions taken, by machine and target state.",
		}, []string{"machine", "to"}),
		unhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbox_events_unhandled_total",
			Help: "Events that matched no enabled transition.",
		}, []string{"machine", "event"}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbox_actors_spawned_total",
			Help: "Actors spawned.",
		}, []string{"machine"}),
		stopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbox_actors_stopped_total",
			Help: "Actors stopped.",
		}, []string{"machine"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskbox_actors_active",
			Help: "Live actors.",
		}, []string{"machine"}),
		timers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "riskbox_timers_fired_total",
			Help: "Delayed transition timers fired.",
		}),
		dispatch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskbox_dispatch_duration_seconds",
			Help:    "Time spent processing one event on one actor.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"machine"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskbox_dispatch_errors_total",
			Help: "Dispatches that returned an error.",
		}, []string{"machine"}),
	}
	for _, c := range []prometheus.Collector{
		m.transitions, m.unhandled, m.spawned, m.stopped, m.active, m.timers, m.dispatch, m.errors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) OnTransition(i core.TransitionInfo) {
	m.transitions.WithLabelValues(i.Machine, i.To).Inc()
}

func (m *Metrics) OnUnhandled(u core.UnhandledEvent) {
	m.unhandled.WithLabelValues(u.Machine, u.Event.Type).Inc()
}

func (m *Metrics) OnSpawn(i core.ActorInfo) {
	m.spawned.WithLabelValues(i.Machine).Inc()
	m.active.WithLabelValues(i.Machine).Inc()
}

func (m *Metrics) OnStop(i core.ActorInfo) {
	m.stopped.WithLabelValues(i.Machine).Inc()
	m.active.WithLabelValues(i.Machine).Dec()
}

func (m *Metrics) OnTimer(core.TimerInfo) {
	m.timers.Inc()
}

func (m *Metrics) OnDispatch(i core.DispatchInfo) {
	m.dispatch.WithLabelValues(i.Machine).Observe(i.Duration.Seconds())
	if i.Err != nil {
		m.errors.WithLabelValues(i.Machine).Inc()
	}
}
