package mirror

import (
	"context"
	"time"

	"github.com/example/transport-tracking/internal/models"
)

// Sink receives mirrored chauffeur positions on the monitor side.
// Unlike the agent's telemetry uploads, sink writes ARE retried: the
// monitor is infrastructure and a lost write here is a real gap in the
// fleet picture.
type Sink interface {
	Record(ctx context.Context, chauffeurID string, s models.PositionSample) error
}

// RecordWithRetry writes to a sink with bounded retry and exponential
// backoff.
func RecordWithRetry(ctx context.Context, sink Sink, chauffeurID string, s models.PositionSample, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = sink.Record(ctx, chauffeurID, s); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// Fanout records to every sink, returning the first error after trying
// all of them.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, chauffeurID string, s models.PositionSample) error {
	var first error
	for _, sink := range f {
		if err := sink.Record(ctx, chauffeurID, s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
