package follow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/observability"
)

type DemandeAPI interface {
	GetDemande(ctx context.Context, id int) (*models.Demande, error)
}

// Follower polls one mission's detail and keeps the assigned
// chauffeur's last-known position. This is the loop a client map uses
// to follow its driver; staleness between polls is expected.
type Follower struct {
	API       DemandeAPI
	DemandeID int
	Interval  time.Duration
	Logger    *slog.Logger

	mu     sync.Mutex
	last   models.Coord
	statut models.Statut
	seen   bool
}

func NewFollower(api DemandeAPI, demandeID int, interval time.Duration, logger *slog.Logger) *Follower {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Follower{API: api, DemandeID: demandeID, Interval: interval, Logger: logger}
}

// Run polls until ctx is canceled or the mission reaches a terminal
// statut.
func (f *Follower) Run(ctx context.Context) {
	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	if f.poll(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if f.poll(ctx) {
			return
		}
	}
}

// poll returns true when polling should stop.
func (f *Follower) poll(ctx context.Context) bool {
	observability.PollCycles.Inc()
	d, err := f.API.GetDemande(ctx, f.DemandeID)
	if err != nil {
		if ctx.Err() == nil {
			f.Logger.Warn("poll failed", "demande_id", f.DemandeID, "error", err)
		}
		return false
	}
	f.mu.Lock()
	f.statut = d.Statut
	if d.Chauffeur != nil {
		f.last = models.Coord{Latitude: d.Chauffeur.Latitude, Longitude: d.Chauffeur.Longitude}
		f.seen = true
	}
	f.mu.Unlock()
	if d.Statut.Terminal() {
		f.Logger.Info("demande reached terminal statut, stopping follow", "demande_id", d.ID, "statut", string(d.Statut))
		return true
	}
	return false
}

// Last returns the chauffeur's last-known position, if any was seen.
func (f *Follower) Last() (models.Coord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.seen
}

func (f *Follower) Statut() models.Statut {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statut
}
