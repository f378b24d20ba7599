package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	samples       []*SampleRecord
	events        []*EventRecord
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closed        bool
	dropped       uint64
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	// Open database with specific pragmas for better performance and safety
	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := ValidateAndUpdateSchema(db, cfg.BackupDir, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("History repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		samples:       make([]*SampleRecord, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	// Start background goroutine for periodic flushing if batching is enabled
	if cfg.BatchSize > 0 && cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(cfg.BatchTimeout)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

func (r *repository) AddSample(rec *SampleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New().New(ErrStorageClose)
	}

	cp := *rec
	r.samples = append(r.samples, &cp)

	if len(r.samples) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

// AddEvent buffers the event with the pending samples; events are rare so
// they are flushed right away
func (r *repository) AddEvent(rec *EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New().New(ErrStorageClose)
	}

	cp := *rec
	r.events = append(r.events, &cp)

	return r.flush()
}

// Samples returns the newest samples of a fan, newest first
func (r *repository) Samples(ctx context.Context, fanID string, limit int) ([]SampleRecord, error) {
	errFactory := errors.New()

	if err := r.flushLocked(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectSamplesSQL, fanID, normalizeLimit(limit))
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var out []SampleRecord
	for rows.Next() {
		var (
			rec SampleRecord
			ts  int64
		)
		if err := rows.Scan(&ts, &rec.Site, &rec.FanID, &rec.Temperature, &rec.Speed, &rec.Power); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		rec.Time = time.UnixMilli(ts).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return out, nil
}

// Events returns the newest events, newest first. An empty fanID matches
// every fan.
func (r *repository) Events(ctx context.Context, fanID string, limit int) ([]EventRecord, error) {
	errFactory := errors.New()

	if err := r.flushLocked(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectEventsSQL, fanID, fanID, normalizeLimit(limit))
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec EventRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.FanID, &rec.Kind, &rec.Message); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		rec.Time = time.UnixMilli(ts).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return out, nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	// Signal the flusher goroutine to stop and wait for its final flush
	close(r.shutdownChan)
	<-r.flushDoneChan

	if r.flushTicker != nil {
		r.flushTicker.Stop()
	} else if err := r.flushLocked(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to flush history on close")
	}

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("History repository closed gracefully")

	return nil
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			if err := r.flushLocked(); err != nil {
				r.logger.Error().Err(err).Msg("Periodic history flush failed")
			}
		case <-r.shutdownChan:
			if err := r.flushLocked(); err != nil {
				r.logger.Error().Err(err).Msg("Final history flush failed")
			}
			return
		}
	}
}

func (r *repository) flushLocked() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flush()
}

// flush writes buffered records in one transaction; callers hold r.mu. A
// batch that cannot be written is dropped so the buffers stay bounded.
func (r *repository) flush() error {
	if len(r.samples) == 0 && len(r.events) == 0 {
		return nil
	}

	err := r.write()
	if err != nil {
		r.dropped += uint64(len(r.samples) + len(r.events))
		r.logger.Error().
			Err(err).
			Int("samples", len(r.samples)).
			Int("events", len(r.events)).
			Uint64("dropped_total", r.dropped).
			Msg("Dropping history batch after failed write")
	} else {
		r.logger.Debug().
			Int("samples", len(r.samples)).
			Int("events", len(r.events)).
			Msg("Flushed history to database")
	}

	r.samples = r.samples[:0]
	r.events = r.events[:0]

	return err
}

// Dropped reports how many records were discarded by failed writes
func (r *repository) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

func (r *repository) write() error {
	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	rollback := func(cause error) error {
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, cause)
	}

	if len(r.samples) > 0 {
		stmt, err := tx.Prepare(insertSampleSQL)
		if err != nil {
			return rollback(err)
		}
		defer stmt.Close()

		for _, s := range r.samples {
			if _, err := stmt.Exec(s.Time.UnixMilli(), s.Site, s.FanID, s.Temperature, int64(s.Speed), s.Power); err != nil {
				return rollback(err)
			}
		}
	}

	if len(r.events) > 0 {
		stmt, err := tx.Prepare(insertEventSQL)
		if err != nil {
			return rollback(err)
		}
		defer stmt.Close()

		for _, e := range r.events {
			if _, err := stmt.Exec(e.ID, e.Time.UnixMilli(), e.FanID, e.Kind, e.Message); err != nil {
				return rollback(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1 // no limit in SQLite
	}
	return limit
}
