package sink

import (
	"context"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/simulator"
)

// Archive feeds readings and entries into the history recorder. The
// recorder's lifetime is owned by the caller.
type Archive struct {
	rec history.Recorder
}

func NewArchive(rec history.Recorder) *Archive {
	return &Archive{rec: rec}
}

func (a *Archive) Export(ctx context.Context, r simulator.Reading) error {
	return a.rec.RecordSample(ctx, &history.SampleRecord{
		Time:        r.Sample.Time,
		Site:        r.Site,
		FanID:       r.FanID,
		Temperature: r.Sample.Temperature,
		Speed:       r.Sample.Speed,
		Power:       r.Sample.Power,
	})
}

func (a *Archive) Publish(ctx context.Context, e eventlog.Entry) error {
	return a.rec.RecordEvent(ctx, &history.EventRecord{
		ID:      e.ID,
		Time:    e.Time,
		FanID:   e.FanID,
		Kind:    string(e.Kind),
		Message: e.Message,
	})
}

func (*Archive) Close() error { return nil }
