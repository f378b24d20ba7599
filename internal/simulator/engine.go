package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/monitor"
	"codeberg.org/mutker/ventsim/internal/telemetry"
)

// Engine owns the simulated fans, their thresholds, the event log and the
// open detail views. All state is guarded by mu. Readings and log entries
// are emitted while mu is held, so observers and log subscribers must not
// block or call back into the engine.
type Engine struct {
	cfg    Config
	log    logger.Logger
	events *eventlog.Log
	rnd    telemetry.Rand
	now    func() time.Time

	mu         sync.Mutex
	fans       map[string]fan.Controller
	sites      map[string]string
	order      []string
	thresholds map[string]float64
	views      map[string]*view
	observers  []ReadingObserver
	nextGen    uint64
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// view is an open fan detail modal. gen identifies the tick loop allowed
// to write into it; a restarted or closed view invalidates older loops.
type view struct {
	window  *telemetry.Window
	monitor monitor.Monitor
	gen     uint64
	cancel  context.CancelFunc
}

type Option func(*Engine)

// WithRand sets the jitter source. It is only used under the engine lock.
func WithRand(r telemetry.Rand) Option {
	return func(e *Engine) {
		e.rnd = r
	}
}

// WithSeed seeds the default jitter source for reproducible runs
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func WithEventLog(events *eventlog.Log) Option {
	return func(e *Engine) {
		e.events = events
	}
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		log:        logger.Default().With("simulator"),
		now:        time.Now,
		fans:       make(map[string]fan.Controller),
		sites:      make(map[string]string),
		thresholds: make(map[string]float64),
		views:      make(map[string]*view),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(e.now().UnixNano()))
	}
	if e.events == nil {
		e.events = eventlog.New(eventlog.WithClock(e.now))
	}

	for _, s := range cfg.Catalog {
		for _, spec := range s.Fans {
			f, err := fan.New(spec.ID, spec.On, fan.Speed(spec.Speed), cfg.Speed)
			if err != nil {
				return nil, errFactory.Wrap(ErrInvalidConfig, err)
			}
			e.fans[spec.ID] = f
			e.sites[spec.ID] = s.Name
			e.order = append(e.order, spec.ID)
			e.thresholds[spec.ID] = cfg.Threshold.Default
		}
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.log.Debug().
		Int("fans", len(e.order)).
		Dur("interval", cfg.Interval).
		Int("capacity", cfg.Capacity).
		Msg("Simulator initialized")

	return e, nil
}

// Events exposes the event log
func (e *Engine) Events() *eventlog.Log {
	return e.events
}

// Config returns the configuration the engine runs with
func (e *Engine) Config() Config {
	return e.cfg
}

// Observe registers fn for every future reading. fn runs under the engine
// lock.
func (e *Engine) Observe(fn ReadingObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, fn)
}

// Fans lists every fan in catalog order
func (e *Engine) Fans() []FanStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]FanStatus, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.statusLocked(id))
	}

	return out
}

// Fan returns a single fan
func (e *Engine) Fan(fanID string) (FanStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.fanLocked(fanID); err != nil {
		return FanStatus{}, err
	}

	return e.statusLocked(fanID), nil
}

func (e *Engine) statusLocked(fanID string) FanStatus {
	_, open := e.views[fanID]

	return FanStatus{
		State:     e.fans[fanID].State(),
		Site:      e.sites[fanID],
		Threshold: e.thresholds[fanID],
		ViewOpen:  open,
	}
}

func (e *Engine) fanLocked(fanID string) (fan.Controller, error) {
	f, ok := e.fans[fanID]
	if !ok {
		return nil, errors.New().WithData(ErrUnknownFan, fanID)
	}

	return f, nil
}

// Close stops every tick loop and waits for them to exit
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for id, v := range e.views {
		v.cancel()
		delete(e.views, id)
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()

	e.log.Debug().Msg("Simulator stopped")

	return nil
}

