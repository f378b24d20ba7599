package simulator

import (
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/monitor"
	"codeberg.org/mutker/ventsim/internal/site"
	"codeberg.org/mutker/ventsim/internal/telemetry"
)

const (
	DefaultInterval = time.Second
	// entries shown in a fan detail view
	defaultViewLogLimit = 10
)

type Config struct {
	Interval     time.Duration
	Capacity     int
	ViewLogLimit int
	Model        telemetry.Model
	Speed        fan.SpeedLimits
	Threshold    monitor.Limits
	Catalog      site.Catalog
}

func DefaultConfig() Config {
	return Config{
		Interval:     DefaultInterval,
		Capacity:     telemetry.DefaultCapacity,
		ViewLogLimit: defaultViewLogLimit,
		Model:        telemetry.DefaultModel(),
		Speed:        fan.DefaultSpeedLimits(),
		Threshold:    monitor.DefaultLimits(),
		Catalog:      site.DefaultCatalog(),
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "interval must be positive")
	}
	if c.Capacity <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "window capacity must be positive")
	}
	if !c.Speed.Valid() {
		return errFactory.WithData(ErrInvalidConfig, "invalid speed limits")
	}
	if !c.Threshold.Valid() {
		return errFactory.WithData(ErrInvalidConfig, "invalid threshold limits")
	}
	if err := c.Model.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}

	return nil
}
