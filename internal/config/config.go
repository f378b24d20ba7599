package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/monitor"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"codeberg.org/mutker/ventsim/internal/sink"
	"codeberg.org/mutker/ventsim/internal/site"
	"codeberg.org/mutker/ventsim/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "/etc/ventsim.toml"
	DefaultEnvPrefix  = "VENTSIM"
	DefaultLogLevel   = LogLevelInfo
	DefaultListen     = ":8080"
	DefaultPIDDir     = "/run/ventsim"
	DefaultViewLogs   = 10
)

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	LogLevel     LogLevel          `mapstructure:"log_level"`
	Listen       string            `mapstructure:"listen"`
	Interval     time.Duration     `mapstructure:"interval"`
	Window       int               `mapstructure:"window"`
	ViewLogLimit int               `mapstructure:"view_log_limit"`
	Seed         int64             `mapstructure:"seed"`
	PIDDir       string            `mapstructure:"pid_dir"`
	Speed        fan.SpeedLimits   `mapstructure:"speed"`
	Threshold    monitor.Limits    `mapstructure:"threshold"`
	Model        telemetry.Model   `mapstructure:"model"`
	CORS         CORSConfig        `mapstructure:"cors"`
	History      history.Config    `mapstructure:"history"`
	Metrics      metrics.Config    `mapstructure:"metrics"`
	Influx       sink.InfluxConfig `mapstructure:"influx"`
	Kafka        sink.KafkaConfig  `mapstructure:"kafka"`
	Sites        site.Catalog      `mapstructure:"sites"`
	ConfigFile   string            `mapstructure:"-"`
}

// Load reads the configuration from, in increasing priority: defaults, the
// TOML file, dotenv files, the environment and the command line in args
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix: DefaultEnvPrefix,
		envFiles:  []string{".env"},
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(ErrInvalidConfig, err)
		}
	}

	if err := loadEnvFiles(o.envFiles); err != nil {
		return nil, errFactory.Wrap(ErrReadConfig, err)
	}

	v := viper.New()
	setDefaults(v)

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(ErrBindFlags, err)
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := configPath(flags, o)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, errFactory.WithData(ErrReadConfig, struct {
				Path  string
				Error string
			}{
				Path:  path,
				Error: err.Error(),
			})
		}
		path = ""
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	cfg.ConfigFile = path
	if len(cfg.Sites) == 0 {
		cfg.Sites = site.DefaultCatalog()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// configPath resolves the config file: --config, WithConfigFile,
// <PREFIX>_CONFIG, then the default path
func configPath(flags *pflag.FlagSet, o *options) (string, bool) {
	if f := flags.Lookup("config"); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if o.configPath != "" {
		return o.configPath, true
	}
	if p := os.Getenv(o.envPrefix + "_CONFIG"); p != "" {
		return p, true
	}
	return DefaultConfigFile, false
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.Interval.String())
	}
	if c.Window <= 0 {
		return errFactory.WithData(ErrInvalidWindow, c.Window)
	}
	if !c.Speed.Valid() {
		return errFactory.WithData(ErrInvalidSpeedLimits, c.Speed)
	}
	if !c.Threshold.Valid() {
		return errFactory.WithData(ErrInvalidThresholdLimits, c.Threshold)
	}
	if err := c.Model.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}
	if err := c.Sites.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}
	if err := c.History.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}
	if err := c.Influx.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}
	if err := c.Kafka.Validate(); err != nil {
		return errFactory.Wrap(ErrInvalidConfig, err)
	}

	return nil
}

// Simulator returns the engine settings
func (c *Config) Simulator() simulator.Config {
	return simulator.Config{
		Interval:     c.Interval,
		Capacity:     c.Window,
		ViewLogLimit: c.ViewLogLimit,
		Model:        c.Model,
		Speed:        c.Speed,
		Threshold:    c.Threshold,
		Catalog:      c.Sites,
	}
}
