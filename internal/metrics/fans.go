package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// fanCollector reports the fan states read at scrape time
type fanCollector struct {
	fans      FanSource
	on        *prometheus.Desc
	speed     *prometheus.Desc
	threshold *prometheus.Desc
	openViews *prometheus.Desc
}

func newFanCollector(namespace string, fans FanSource) *fanCollector {
	labels := []string{"fan", "site"}

	return &fanCollector{
		fans: fans,
		on: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fan", "on"),
			"Whether the fan is switched on.", labels, nil),
		speed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fan", "speed_rpm"),
			"Configured fan speed.", labels, nil),
		threshold: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fan", "threshold_celsius"),
			"Temperature threshold of the fan.", labels, nil),
		openViews: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "open_views"),
			"Fan detail views currently simulating.", nil, nil),
	}
}

func (c *fanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.on
	ch <- c.speed
	ch <- c.threshold
	ch <- c.openViews
}

func (c *fanCollector) Collect(ch chan<- prometheus.Metric) {
	open := 0
	for _, f := range c.fans.Fans() {
		on := 0.0
		if f.On {
			on = 1
		}
		if f.ViewOpen {
			open++
		}

		ch <- prometheus.MustNewConstMetric(c.on, prometheus.GaugeValue, on, f.ID, f.Site)
		ch <- prometheus.MustNewConstMetric(c.speed, prometheus.GaugeValue, float64(f.Speed), f.ID, f.Site)
		ch <- prometheus.MustNewConstMetric(c.threshold, prometheus.GaugeValue, f.Threshold, f.ID, f.Site)
	}
	ch <- prometheus.MustNewConstMetric(c.openViews, prometheus.GaugeValue, float64(open))
}
