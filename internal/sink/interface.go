package sink

import (
	"context"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/simulator"
)

// SampleExporter writes readings to an external time series store
type SampleExporter interface {
	Export(ctx context.Context, r simulator.Reading) error
	Close() error
}

// EventPublisher forwards event log entries to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, e eventlog.Entry) error
	Close() error
}
