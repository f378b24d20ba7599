package history

import (
	"context"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If history is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("History disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create history repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Bool("enabled", cfg.Enabled).
		Msg("History service initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) RecordSample(ctx context.Context, rec *SampleRecord) error {
	errFactory := errors.New()

	if rec == nil || rec.FanID == "" {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		return s.repo.AddSample(rec)
	}
}

func (s *service) RecordEvent(ctx context.Context, rec *EventRecord) error {
	errFactory := errors.New()

	if rec == nil || rec.ID == "" {
		return errFactory.New(ErrInvalidRecord)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		return s.repo.AddEvent(rec)
	}
}

func (s *service) Samples(ctx context.Context, fanID string, limit int) ([]SampleRecord, error) {
	return s.repo.Samples(ctx, fanID, limit)
}

func (s *service) Events(ctx context.Context, fanID string, limit int) ([]EventRecord, error) {
	return s.repo.Events(ctx, fanID, limit)
}

func (*service) Enabled() bool {
	return true
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

// No-op implementation
func (*noopRecorder) RecordSample(_ context.Context, _ *SampleRecord) error { return nil }

func (*noopRecorder) RecordEvent(_ context.Context, _ *EventRecord) error { return nil }

func (*noopRecorder) Samples(_ context.Context, _ string, _ int) ([]SampleRecord, error) {
	return nil, errors.New().New(ErrDisabled)
}

func (*noopRecorder) Events(_ context.Context, _ string, _ int) ([]EventRecord, error) {
	return nil, errors.New().New(ErrDisabled)
}

func (*noopRecorder) Enabled() bool { return false }

func (*noopRecorder) Close() error { return nil }
