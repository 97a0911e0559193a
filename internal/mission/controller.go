package mission

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/observability"
)

// TransitionAPI submits a progress value and returns the statut the
// server echoes back.
type TransitionAPI interface {
	UpdateMissionProgress(ctx context.Context, missionID, progress int) (models.Statut, error)
}

// Action is the single control offered to the driver for a mission.
type Action string

const (
	ActionNone   Action = ""
	ActionStart  Action = "start"
	ActionFinish Action = "finish"
)

// NextAction maps a cached statut to the control the screen shows.
func NextAction(s models.Statut) Action {
	switch s {
	case models.StatutAcceptee:
		return ActionStart
	case models.StatutEnCours:
		return ActionFinish
	}
	return ActionNone
}

var (
	// ErrSubmitInFlight means a previous Submit has not returned yet.
	// The control stays disabled for the duration of the round-trip.
	ErrSubmitInFlight = errors.New("mission: transition already in flight")
	// ErrIllegalTransition means the cached statut offers no action.
	// Intent validation only; the server remains the authority.
	ErrIllegalTransition = errors.New("mission: no legal transition from current statut")
)

// Controller presents the single valid next action for a mission and
// submits that transition. The displayed statut is only ever updated
// from the server's acknowledgement, never from the submitted value:
// the client proposes, the server decides.
type Controller struct {
	api        TransitionAPI
	missionID  int
	logger     *slog.Logger
	onComplete func() // navigation analogue, fired once at TERMINEE

	mu        sync.Mutex
	statut    models.Statut
	inFlight  bool
	completed bool
}

func NewController(api TransitionAPI, missionID int, initial models.Statut, onComplete func(), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{api: api, missionID: missionID, statut: initial, onComplete: onComplete, logger: logger}
}

func (c *Controller) MissionID() int { return c.missionID }

// Statut returns the last server-acknowledged statut (or the initial
// cached one before any submission).
func (c *Controller) Statut() models.Statut {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statut
}

// Action returns the control to display for the current statut.
func (c *Controller) Action() Action {
	return NextAction(c.Statut())
}

// Refresh replaces the cached statut with a value read back from the
// server (e.g. a fresh GetDemande).
func (c *Controller) Refresh(s models.Statut) {
	c.mu.Lock()
	c.statut = s
	c.mu.Unlock()
}

// Submit proposes the next transition for the mission. On success the
// displayed statut becomes exactly the server's echoed value. On
// failure the statut is left untouched and the error is returned for
// the caller to surface; there is no automatic retry.
func (c *Controller) Submit(ctx context.Context) (models.Statut, error) {
	c.mu.Lock()
	if c.inFlight {
		cur := c.statut
		c.mu.Unlock()
		return cur, ErrSubmitInFlight
	}
	progress, ok := c.statut.NextProgress()
	if !ok {
		cur := c.statut
		c.mu.Unlock()
		return cur, ErrIllegalTransition
	}
	c.inFlight = true
	c.mu.Unlock()

	echoed, err := c.api.UpdateMissionProgress(ctx, c.missionID, progress)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		cur := c.statut
		c.mu.Unlock()
		observability.TransitionFailures.Inc()
		c.logger.Error("transition failed", "mission_id", c.missionID, "progress", progress, "error", err)
		return cur, err
	}
	c.statut = echoed
	fireComplete := echoed == models.StatutTerminee && !c.completed && c.onComplete != nil
	if fireComplete {
		c.completed = true
	}
	c.mu.Unlock()

	observability.TransitionsTotal.WithLabelValues(string(echoed)).Inc()
	c.logger.Info("transition acknowledged", "mission_id", c.missionID, "progress", progress, "statut", string(echoed))
	if fireComplete {
		c.onComplete()
	}
	return echoed, nil
}
