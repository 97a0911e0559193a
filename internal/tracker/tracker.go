package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/example/transport-tracking/internal/geo"
	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/observability"
	"github.com/example/transport-tracking/internal/source"
)

// PlaceUnavailable is the static place name shown for the lifetime of
// a reporter whose location source denied access.
const PlaceUnavailable = "Localisation indisponible"

// a new place name is only worth fetching after moving this far
const geocodeRefreshDistanceM = 100

type PositionAPI interface {
	UpdatePosition(ctx context.Context, driverID int, p models.Coord) error
}

type Geocoder interface {
	PlaceName(ctx context.Context, lat, lon float64) (string, error)
}

var ErrAlreadyStarted = errors.New("tracker: already started")

type Config struct {
	API         PositionAPI
	Geocoder    Geocoder // optional
	Source      source.Source
	ChauffeurID int

	// A raw sample qualifies for upload when it moved MinDistanceM
	// from the last upload OR MinInterval elapsed — whichever first.
	MinDistanceM float64
	MinInterval  time.Duration

	Logger *slog.Logger
}

// Snapshot is the reactive surface consumed by screens: the best-known
// coordinate pair, a human-readable place name and upload counters.
type Snapshot struct {
	Available    bool         `json:"available"`
	Position     models.Coord `json:"position"`
	PlaceName    string       `json:"place_name,omitempty"`
	Sent         uint64       `json:"sent"`
	Dropped      uint64       `json:"dropped"`
	Throttled    uint64       `json:"throttled"`
	LastSampleAt time.Time    `json:"last_sample_at,omitempty"`
}

// Reporter continuously acquires device position and forwards each
// meaningfully-new sample to the API on behalf of one chauffeur.
//
// Uploads are fire-and-forget telemetry: a failed PUT is logged,
// counted and permanently dropped — the next qualifying sample is the
// de facto retry. Cancellation is scope-bound to the reporter's
// lifetime, not to in-flight requests: Stop prevents new uploads but
// lets outstanding ones finish and discard their results.
type Reporter struct {
	cfg Config

	mu       sync.Mutex
	snap     Snapshot
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
	lastSent models.Coord
	sentAt   time.Time
	hasSent  bool
	geoAt    models.Coord
	hasGeo   bool

	sends sync.WaitGroup
}

func New(cfg Config) *Reporter {
	if cfg.MinDistanceM <= 0 {
		cfg.MinDistanceM = 10
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Reporter{cfg: cfg}
}

// Start requests location access and begins the tracking loop.
// A permission-denied subscribe leaves the reporter in a terminal
// unavailable state: the snapshot shows a static place name and no
// network call is ever issued.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)

	// Subscribe doubles as the permission request.
	ch, err := r.cfg.Source.Subscribe(runCtx)
	if err != nil {
		cancel()
		r.mu.Lock()
		r.snap.Available = false
		if errors.Is(err, source.ErrPermissionDenied) {
			r.snap.PlaceName = PlaceUnavailable
		}
		r.mu.Unlock()
		r.cfg.Logger.Warn("tracking unavailable", "error", err)
		return err
	}

	r.mu.Lock()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.snap.Available = true
	r.mu.Unlock()

	// one immediate coarse fix to minimize time-to-first-fix; failure
	// here is not fatal, the subscription will deliver soon enough
	if first, err := r.cfg.Source.Current(runCtx); err == nil {
		r.accept(runCtx, first, true)
	} else if runCtx.Err() == nil {
		r.cfg.Logger.Warn("initial fix failed", "error", err)
	}

	go r.consume(runCtx, ch)
	return nil
}

// Stop ends the subscription. Late samples delivered by the source
// after Stop are ignored; in-flight uploads complete and are discarded.
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Reporter) consume(ctx context.Context, ch <-chan models.PositionSample) {
	defer close(r.done)
	for s := range ch {
		if ctx.Err() != nil {
			// late callback after Stop
			return
		}
		r.accept(ctx, s, false)
	}
}

func (r *Reporter) accept(ctx context.Context, s models.PositionSample, force bool) {
	if !geo.Valid(s.Latitude, s.Longitude) {
		r.cfg.Logger.Warn("discarding invalid sample", "lat", s.Latitude, "lon", s.Longitude)
		return
	}

	r.mu.Lock()
	r.snap.Position = s.Coord
	if !s.CapturedAt.IsZero() {
		r.snap.LastSampleAt = s.CapturedAt
	}
	if !force && !r.qualifiesLocked(s) {
		r.snap.Throttled++
		r.mu.Unlock()
		observability.PositionsThrottled.Inc()
		return
	}
	r.lastSent = s.Coord
	r.sentAt = time.Now()
	r.hasSent = true
	needGeo := r.cfg.Geocoder != nil &&
		(!r.hasGeo || geo.Haversine(r.geoAt.Latitude, r.geoAt.Longitude, s.Latitude, s.Longitude) >= geocodeRefreshDistanceM)
	if needGeo {
		r.geoAt = s.Coord
		r.hasGeo = true
	}
	r.mu.Unlock()

	// the subscription is never blocked on a round-trip; uploads can
	// land out of order and the server keeps last-write-wins
	r.sends.Add(1)
	go r.send(ctx, s)
	if needGeo {
		go r.refreshPlaceName(ctx, s)
	}
}

func (r *Reporter) qualifiesLocked(s models.PositionSample) bool {
	if !r.hasSent {
		return true
	}
	if geo.Haversine(r.lastSent.Latitude, r.lastSent.Longitude, s.Latitude, s.Longitude) >= r.cfg.MinDistanceM {
		return true
	}
	return time.Since(r.sentAt) >= r.cfg.MinInterval
}

func (r *Reporter) send(ctx context.Context, s models.PositionSample) {
	defer r.sends.Done()
	if ctx.Err() != nil {
		return
	}
	if err := r.cfg.API.UpdatePosition(ctx, r.cfg.ChauffeurID, s.Coord); err != nil {
		// best-effort telemetry: drop, never surface, never retry
		observability.PositionsDropped.Inc()
		r.mu.Lock()
		r.snap.Dropped++
		r.mu.Unlock()
		r.cfg.Logger.Warn("position update dropped", "error", err)
		return
	}
	observability.PositionsSent.Inc()
	r.mu.Lock()
	r.snap.Sent++
	r.mu.Unlock()
}

func (r *Reporter) refreshPlaceName(ctx context.Context, s models.PositionSample) {
	name, err := r.cfg.Geocoder.PlaceName(ctx, s.Latitude, s.Longitude)
	if err != nil {
		if ctx.Err() == nil {
			observability.GeocodeFailures.Inc()
			r.cfg.Logger.Debug("reverse geocode failed", "error", err)
		}
		return
	}
	r.mu.Lock()
	r.snap.PlaceName = name
	r.mu.Unlock()
}
