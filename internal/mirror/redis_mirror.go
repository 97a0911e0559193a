package mirror

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/transport-tracking/internal/models"
)

// GeoMirror keeps the fleet's latest positions in a Redis GEO set,
// with a small metadata hash per chauffeur for dashboards.
type GeoMirror struct {
	client *redis.Client
	key    string
}

func NewGeoMirror(addr, password, key string) *GeoMirror {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &GeoMirror{client: c, key: key}
}

func (g *GeoMirror) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *GeoMirror) Close() error { return g.client.Close() }

func (g *GeoMirror) Record(ctx context.Context, chauffeurID string, s models.PositionSample) error {
	if _, err := g.client.GeoAdd(ctx, g.key, &redis.GeoLocation{Longitude: s.Longitude, Latitude: s.Latitude, Name: chauffeurID}).Result(); err != nil {
		return err
	}
	meta := map[string]interface{}{
		"speed":    strconv.FormatFloat(s.SpeedMps, 'f', 2, 64),
		"heading":  strconv.FormatFloat(s.Heading, 'f', 1, 64),
		"seen_at":  s.CapturedAt.Format(time.RFC3339),
		"accuracy": strconv.FormatFloat(s.AccuracyM, 'f', 1, 64),
	}
	return g.client.HSet(ctx, metaKey(chauffeurID), meta).Err()
}

func metaKey(id string) string { return "chauffeur:meta:" + id }
