package metrics

import (
	"net/http"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/simulator"
)

// Collector exports the simulation state in the Prometheus format
type Collector interface {
	ObserveReading(r simulator.Reading)
	ObserveEvent(e eventlog.Entry)
	Handler() http.Handler
	Enabled() bool
}

// FanSource lists the fans at scrape time
type FanSource interface {
	Fans() []simulator.FanStatus
}
