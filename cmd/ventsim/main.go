package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/ventsim/internal/api"
	"codeberg.org/mutker/ventsim/internal/config"
	"codeberg.org/mutker/ventsim/internal/dashboard"
	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/pid"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"codeberg.org/mutker/ventsim/internal/sink"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel.String(), logger.IsService())
	logger.Debug().Str("file", cfg.ConfigFile).Msg("Config loaded")

	if err := pid.Write(cfg.PIDDir); err != nil {
		exit(err, "Failed to write pid file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err = run(ctx, cfg)
	cancel()

	if rmErr := pid.Remove(cfg.PIDDir); rmErr != nil {
		logger.Warn().Err(rmErr).Msg("Failed to remove pid file")
	}
	if err != nil {
		exit(err, "Exiting with error")
	}

	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Default()
	errFactory := errors.New()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine, err := simulator.New(cfg.Simulator(),
		simulator.WithSeed(seed),
		simulator.WithLogger(log.With("simulator")),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	// camera noise has its own source; a seed always yields the same telemetry
	dash := dashboard.New(engine, rand.New(rand.NewSource(seed+1)), time.Now)

	recorder, err := history.NewService(cfg.History, log.With("history"))
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close history")
		}
	}()

	collector, err := metrics.NewService(cfg.Metrics, engine, nil)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	engine.Observe(collector.ObserveReading)
	engine.Events().Subscribe(collector.ObserveEvent)

	fwd, err := newForwarder(cfg, recorder, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	fwd.Start()
	defer func() {
		if err := fwd.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close sinks")
		}
	}()
	engine.Observe(fwd.Reading)
	engine.Events().Subscribe(fwd.Event)

	// stop the tick loops before the sinks and the archive close
	defer func() {
		if err := dash.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close dashboard")
		}
		if err := engine.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop simulator")
		}
	}()

	server := api.New(api.Config{
		Listen:         cfg.Listen,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, api.Deps{
		Engine:    engine,
		Dashboard: dash,
		History:   recorder,
		Metrics:   collector,
	}, log.With("api"))

	log.Info().
		Str("listen", cfg.Listen).
		Dur("interval", cfg.Interval).
		Int("window", cfg.Window).
		Int("sites", len(cfg.Sites)).
		Bool("history", recorder.Enabled()).
		Bool("metrics", collector.Enabled()).
		Bool("influx", cfg.Influx.Enabled).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("Starting ventilation simulator")

	return server.Run(ctx)
}

// newForwarder collects the enabled sinks; disabled ones are left out so
// nothing is queued for them
func newForwarder(cfg *config.Config, recorder history.Recorder, log logger.Logger) (*sink.Forwarder, error) {
	var (
		exporters  []sink.SampleExporter
		publishers []sink.EventPublisher
	)

	if recorder.Enabled() {
		archive := sink.NewArchive(recorder)
		exporters = append(exporters, archive)
		publishers = append(publishers, archive)
	}

	if cfg.Influx.Enabled {
		x, err := sink.NewInfluxExporter(cfg.Influx, log.With("influx"))
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, x)
	}

	if cfg.Kafka.Enabled {
		p, err := sink.NewKafkaPublisher(cfg.Kafka, log.With("kafka"))
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}

	return sink.NewForwarder(exporters, publishers, log.With("sink")), nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func exit(err error, msg string) {
	var coded errors.Error
	if errors.As(err, &coded) {
		logger.FatalWithCode(coded).Msg(msg)
	}
	logger.Fatal().Err(err).Msg(msg)
}
