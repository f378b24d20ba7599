package sink

import (
	"context"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/simulator"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const measurement = "fan_telemetry"

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type influxExporter struct {
	client influxdb2.Client
	writer pointWriter
	log    logger.Logger
}

type noopExporter struct{}

// NewInfluxExporter connects to InfluxDB when enabled. An unhealthy server
// is only reported; writes are retried on every reading.
func NewInfluxExporter(cfg InfluxConfig, log logger.Logger) (SampleExporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Debug().Msg("Influx export disabled")
		return &noopExporter{}, nil
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	health, err := client.Health(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("url", cfg.URL).Msg("InfluxDB not reachable")
	case health.Status != "pass":
		log.Warn().Str("url", cfg.URL).Str("status", string(health.Status)).Msg("InfluxDB health check failed")
	default:
		log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("Connected to InfluxDB")
	}

	return newInfluxExporter(client, client.WriteAPIBlocking(cfg.Org, cfg.Bucket), log), nil
}

func newInfluxExporter(client influxdb2.Client, w pointWriter, log logger.Logger) *influxExporter {
	return &influxExporter{client: client, writer: w, log: log}
}

func (x *influxExporter) Export(ctx context.Context, r simulator.Reading) error {
	if err := x.writer.WritePoint(ctx, samplePoint(r)); err != nil {
		return errors.New().Wrap(ErrExportFailed, err)
	}
	return nil
}

func (x *influxExporter) Close() error {
	if x.client != nil {
		x.client.Close()
	}
	return nil
}

func samplePoint(r simulator.Reading) *write.Point {
	return influxdb2.NewPoint(
		measurement,
		map[string]string{
			"fan":  r.FanID,
			"site": r.Site,
		},
		map[string]interface{}{
			"temperature": r.Sample.Temperature,
			"power":       r.Sample.Power,
			"speed":       r.Sample.Speed,
		},
		r.Sample.Time,
	)
}

func (*noopExporter) Export(_ context.Context, _ simulator.Reading) error { return nil }

func (*noopExporter) Close() error { return nil }
