package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/example/transport-tracking/internal/geo"
	"github.com/example/transport-tracking/internal/models"
)

// ReplaySource plays back a JSON-lines GPS trace at a fixed cadence.
// It doubles as the simulator for local runs and tests.
type ReplaySource struct {
	Path     string
	Interval time.Duration
}

func NewReplaySource(path string, interval time.Duration) *ReplaySource {
	if interval <= 0 {
		interval = time.Second
	}
	return &ReplaySource{Path: path, Interval: interval}
}

func (r *ReplaySource) load() ([]models.PositionSample, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("replay: open trace: %w", err)
	}
	defer f.Close()

	var out []models.PositionSample
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var s models.PositionSample
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("replay: line %d: %w", len(out)+1, err)
		}
		if !geo.Valid(s.Latitude, s.Longitude) {
			return nil, fmt.Errorf("replay: line %d: coordinates out of range", len(out)+1)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("replay: trace %s is empty", r.Path)
	}
	return out, nil
}

func (r *ReplaySource) Current(ctx context.Context) (models.PositionSample, error) {
	samples, err := r.load()
	if err != nil {
		return models.PositionSample{}, err
	}
	s := samples[0]
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now()
	}
	return s, nil
}

func (r *ReplaySource) Subscribe(ctx context.Context) (<-chan models.PositionSample, error) {
	samples, err := r.load()
	if err != nil {
		return nil, err
	}
	ch := make(chan models.PositionSample)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		for _, s := range samples {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if s.CapturedAt.IsZero() {
				s.CapturedAt = time.Now()
			}
			select {
			case <-ctx.Done():
				return
			case ch <- s:
			}
		}
	}()
	return ch, nil
}
