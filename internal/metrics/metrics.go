package metrics

import (
	"net/http"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type service struct {
	reg         *prometheus.Registry
	temperature *prometheus.GaugeVec
	power       *prometheus.GaugeVec
	ticks       *prometheus.CounterVec
	events      *prometheus.CounterVec
}

// No-op implementation
type noopCollector struct{}

// NewService registers the simulation metrics on reg. A nil reg gets a
// fresh registry with the Go runtime and process collectors.
func NewService(cfg Config, fans FanSource, reg *prometheus.Registry) (Collector, error) {
	errFactory := errors.New()

	if !cfg.Enabled {
		return &noopCollector{}, nil
	}
	if fans == nil {
		return nil, errFactory.WithData(ErrInvalidConfig, "fan source is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}

	if reg == nil {
		reg = prometheus.NewRegistry()
		if err := registerAll(reg,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		); err != nil {
			return nil, err
		}
	}

	s := &service{
		reg: reg,
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "fan_temperature_celsius",
			Help:      "Latest simulated temperature of a fan with an open view.",
		}, []string{"fan", "site"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "fan_power_watts",
			Help:      "Latest simulated power draw of a fan with an open view.",
		}, []string{"fan", "site"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks per fan.",
		}, []string{"fan", "site"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "events_total",
			Help:      "Event log entries by kind.",
		}, []string{"kind"}),
	}

	if err := registerAll(reg, s.temperature, s.power, s.ticks, s.events,
		newFanCollector(cfg.Namespace, fans)); err != nil {
		return nil, err
	}

	return s, nil
}

func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return errors.New().Wrap(ErrRegisterFailed, err)
		}
	}
	return nil
}

func (s *service) ObserveReading(r simulator.Reading) {
	s.temperature.WithLabelValues(r.FanID, r.Site).Set(r.Sample.Temperature)
	s.power.WithLabelValues(r.FanID, r.Site).Set(r.Sample.Power)
	s.ticks.WithLabelValues(r.FanID, r.Site).Inc()
}

func (s *service) ObserveEvent(e eventlog.Entry) {
	s.events.WithLabelValues(string(e.Kind)).Inc()
}

func (s *service) Handler() http.Handler {
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{Registry: s.reg})
}

func (*service) Enabled() bool {
	return true
}

// No-op implementation
func (*noopCollector) ObserveReading(_ simulator.Reading) {}

func (*noopCollector) ObserveEvent(_ eventlog.Entry) {}

func (*noopCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (*noopCollector) Enabled() bool {
	return false
}
