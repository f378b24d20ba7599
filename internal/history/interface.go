package history

import (
	"context"
	"time"
)

// Recorder archives simulated samples and log events
type Recorder interface {
	RecordSample(ctx context.Context, rec *SampleRecord) error
	RecordEvent(ctx context.Context, rec *EventRecord) error
	Samples(ctx context.Context, fanID string, limit int) ([]SampleRecord, error)
	Events(ctx context.Context, fanID string, limit int) ([]EventRecord, error)
	Enabled() bool
	Close() error
}

// Repository defines the interface for history data storage
type Repository interface {
	AddSample(rec *SampleRecord) error
	AddEvent(rec *EventRecord) error
	Samples(ctx context.Context, fanID string, limit int) ([]SampleRecord, error)
	Events(ctx context.Context, fanID string, limit int) ([]EventRecord, error)
	Close() error
}

type SampleRecord struct {
	Time        time.Time `json:"time"`
	Site        string    `json:"site"`
	FanID       string    `json:"fan_id"`
	Temperature float64   `json:"temperature"`
	Speed       int       `json:"speed"`
	Power       float64   `json:"power"`
}

type EventRecord struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	FanID   string    `json:"fan_id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}
