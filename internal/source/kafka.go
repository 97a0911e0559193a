package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/transport-tracking/internal/geo"
	"github.com/example/transport-tracking/internal/models"
)

// rawSample is the wire shape emitted by on-vehicle GPS gateways.
// Everything arrives string-typed and is parsed into a typed sample.
type rawSample struct {
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
	Timestamp string `json:"ts"` // unix seconds
	Speed     string `json:"speed,omitempty"`
	Heading   string `json:"heading,omitempty"`
	Accuracy  string `json:"acc,omitempty"`
}

// KafkaSource consumes a vehicle's GPS gateway topic and exposes it as
// a location source.
type KafkaSource struct {
	reader *kafka.Reader
	logger *slog.Logger
}

func NewKafkaSource(brokers []string, topic, group string, logger *slog.Logger) *KafkaSource {
	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 1, MaxBytes: 10e6})
	return &KafkaSource{reader: r, logger: logger}
}

func (k *KafkaSource) Close() error { return k.reader.Close() }

func (k *KafkaSource) Current(ctx context.Context) (models.PositionSample, error) {
	m, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return models.PositionSample{}, err
	}
	return parseRaw(m.Value)
}

func (k *KafkaSource) Subscribe(ctx context.Context) (<-chan models.PositionSample, error) {
	ch := make(chan models.PositionSample)
	go func() {
		defer close(ch)
		backoff := time.Second
		const maxBackoff = 30 * time.Second
		for {
			m, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				k.logger.Warn("kafka read error", "error", err, "backoff", backoff.String())
				time.Sleep(backoff)
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			backoff = time.Second

			s, err := parseRaw(m.Value)
			if err != nil {
				k.logger.Warn("invalid gps sample", "error", err)
				continue
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

func parseRaw(b []byte) (models.PositionSample, error) {
	var raw rawSample
	if err := json.Unmarshal(b, &raw); err != nil {
		return models.PositionSample{}, fmt.Errorf("gps sample: %w", err)
	}
	lat, err := strconv.ParseFloat(raw.Latitude, 64)
	if err != nil {
		return models.PositionSample{}, fmt.Errorf("gps sample lat %q: %w", raw.Latitude, err)
	}
	lon, err := strconv.ParseFloat(raw.Longitude, 64)
	if err != nil {
		return models.PositionSample{}, fmt.Errorf("gps sample lon %q: %w", raw.Longitude, err)
	}
	if !geo.Valid(lat, lon) {
		return models.PositionSample{}, fmt.Errorf("gps sample %s,%s: out of range", raw.Latitude, raw.Longitude)
	}
	s := models.PositionSample{Coord: models.Coord{Latitude: lat, Longitude: lon}, CapturedAt: time.Now()}
	if raw.Timestamp != "" {
		if sec, err := strconv.ParseInt(raw.Timestamp, 10, 64); err == nil {
			s.CapturedAt = time.Unix(sec, 0)
		}
	}
	if raw.Speed != "" {
		s.SpeedMps, _ = strconv.ParseFloat(raw.Speed, 64)
	}
	if raw.Heading != "" {
		s.Heading, _ = strconv.ParseFloat(raw.Heading, 64)
	}
	if raw.Accuracy != "" {
		s.AccuracyM, _ = strconv.ParseFloat(raw.Accuracy, 64)
	}
	return s, nil
}
