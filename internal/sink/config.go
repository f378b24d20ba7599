package sink

import (
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
)

const (
	defaultInfluxURL    = "http://localhost:8086"
	defaultInfluxBucket = "ventsim"
	defaultKafkaTopic   = "ventsim.events"
	defaultWriteTimeout = 5 * time.Second
	defaultQueueSize    = 256
)

type InfluxConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Org     string        `mapstructure:"org"`
	Bucket  string        `mapstructure:"bucket"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Brokers []string      `mapstructure:"brokers"`
	Topic   string        `mapstructure:"topic"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func DefaultInfluxConfig() InfluxConfig {
	return InfluxConfig{
		URL:     defaultInfluxURL,
		Bucket:  defaultInfluxBucket,
		Timeout: defaultWriteTimeout,
	}
}

func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   defaultKafkaTopic,
		Timeout: defaultWriteTimeout,
	}
}

func (c InfluxConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return errors.New().WithData(ErrInvalidConfig, "influx url, org and bucket are required")
	}
	return nil
}

func (c KafkaConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 || c.Topic == "" {
		return errors.New().WithData(ErrInvalidConfig, "kafka brokers and topic are required")
	}
	return nil
}
