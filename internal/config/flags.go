package config

import (
	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/monitor"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"codeberg.org/mutker/ventsim/internal/sink"
	"codeberg.org/mutker/ventsim/internal/telemetry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"listen":       "listen",
	"interval":     "interval",
	"window":       "window",
	"seed":         "seed",
	"pid-dir":      "pid_dir",
	"history":      "history.enabled",
	"history-path": "history.path",
	"metrics":      "metrics.enabled",
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("ventsim", pflag.ContinueOnError)

	flags.StringP("config", "c", DefaultConfigFile, "Path to the TOML configuration file")
	flags.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	flags.StringP("listen", "l", DefaultListen, "HTTP listen address")
	flags.Duration("interval", simulator.DefaultInterval, "Simulation tick interval")
	flags.Int("window", telemetry.DefaultCapacity, "Samples kept per fan view")
	flags.Int64("seed", 0, "Random seed; 0 seeds from the clock")
	flags.String("pid-dir", DefaultPIDDir, "Directory of the pid file")
	flags.Bool("history", false, "Archive samples and events in SQLite")
	flags.String("history-path", history.DefaultConfig().DBPath, "SQLite history database")
	flags.Bool("metrics", true, "Expose Prometheus metrics")

	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.New().Wrap(ErrBindFlags, err)
		}
	}
	return nil
}

// setDefaults registers every key so the environment can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("interval", simulator.DefaultInterval)
	v.SetDefault("window", telemetry.DefaultCapacity)
	v.SetDefault("view_log_limit", DefaultViewLogs)
	v.SetDefault("seed", 0)
	v.SetDefault("pid_dir", DefaultPIDDir)

	speed := fan.DefaultSpeedLimits()
	v.SetDefault("speed.min", int(speed.Min))
	v.SetDefault("speed.max", int(speed.Max))
	v.SetDefault("speed.default", int(speed.Default))

	threshold := monitor.DefaultLimits()
	v.SetDefault("threshold.default", threshold.Default)
	v.SetDefault("threshold.min", threshold.Min)
	v.SetDefault("threshold.max", threshold.Max)
	v.SetDefault("threshold.step", threshold.Step)

	m := telemetry.DefaultModel()
	v.SetDefault("model.base_temperature", m.BaseTemperature)
	v.SetDefault("model.reference_speed", m.ReferenceSpeed)
	v.SetDefault("model.speed_per_degree", m.SpeedPerDegree)
	v.SetDefault("model.base_power", m.BasePower)
	v.SetDefault("model.power_span", m.PowerSpan)
	v.SetDefault("model.smoothing", m.Smoothing)
	v.SetDefault("model.temperature_jitter", m.TemperatureJitter)
	v.SetDefault("model.power_jitter", m.PowerJitter)
	v.SetDefault("model.seed_temperature_jitter", m.SeedTemperature)
	v.SetDefault("model.seed_power_jitter", m.SeedPower)
	v.SetDefault("model.temperature.min", m.Temperature.Min)
	v.SetDefault("model.temperature.max", m.Temperature.Max)
	v.SetDefault("model.power.min", m.Power.Min)
	v.SetDefault("model.power.max", m.Power.Max)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	h := history.DefaultConfig()
	v.SetDefault("history.enabled", h.Enabled)
	v.SetDefault("history.path", h.DBPath)
	v.SetDefault("history.backup_dir", h.BackupDir)
	v.SetDefault("history.batch_size", h.BatchSize)
	v.SetDefault("history.batch_timeout", h.BatchTimeout)

	mc := metrics.DefaultConfig()
	v.SetDefault("metrics.enabled", mc.Enabled)
	v.SetDefault("metrics.namespace", mc.Namespace)

	influx := sink.DefaultInfluxConfig()
	v.SetDefault("influx.enabled", influx.Enabled)
	v.SetDefault("influx.url", influx.URL)
	v.SetDefault("influx.token", influx.Token)
	v.SetDefault("influx.org", influx.Org)
	v.SetDefault("influx.bucket", influx.Bucket)
	v.SetDefault("influx.timeout", influx.Timeout)

	kafka := sink.DefaultKafkaConfig()
	v.SetDefault("kafka.enabled", kafka.Enabled)
	v.SetDefault("kafka.brokers", kafka.Brokers)
	v.SetDefault("kafka.topic", kafka.Topic)
	v.SetDefault("kafka.timeout", kafka.Timeout)
}
