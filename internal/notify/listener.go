package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/transport-tracking/internal/models"
)

// Event is a push message from the platform to the chauffeur app.
type Event struct {
	Type      string `json:"type"`
	DemandeID int    `json:"demandeId,omitempty"`
	Message   string `json:"message,omitempty"`
}

const EventMissionAssigned = "mission_assigned"

type DemandeAPI interface {
	GetDemande(ctx context.Context, id int) (*models.Demande, error)
}

// Listener keeps a websocket open to the platform and resolves
// mission-assignment events into full demande records for the handler.
// The connection is retried with exponential backoff; losing it never
// affects the tracking loop.
type Listener struct {
	URL     string
	Token   string
	API     DemandeAPI
	Handler func(*models.Demande)
	Logger  *slog.Logger

	Dialer *websocket.Dialer
}

func NewListener(url, token string, api DemandeAPI, handler func(*models.Demande), logger *slog.Logger) *Listener {
	return &Listener{URL: url, Token: token, API: api, Handler: handler, Logger: logger, Dialer: websocket.DefaultDialer}
}

// Run blocks until ctx is canceled.
func (l *Listener) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.listenOnce(ctx); err != nil && ctx.Err() == nil {
			l.Logger.Warn("notify connection lost", "error", err, "backoff", backoff.String())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	header := map[string][]string{}
	if l.Token != "" {
		header["Authorization"] = []string{"Bearer " + l.Token}
	}
	conn, _, err := l.Dialer.DialContext(ctx, l.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	l.Logger.Info("notify connected", "url", l.URL)

	// unblock ReadMessage when the context ends
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			l.Logger.Warn("invalid notify event", "error", err)
			continue
		}
		l.handle(ctx, ev)
	}
}

func (l *Listener) handle(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventMissionAssigned:
		d, err := l.API.GetDemande(ctx, ev.DemandeID)
		if err != nil {
			l.Logger.Warn("assigned demande fetch failed", "demande_id", ev.DemandeID, "error", err)
			return
		}
		l.Logger.Info("mission assigned", "demande_id", d.ID, "statut", string(d.Statut))
		if l.Handler != nil {
			l.Handler(d)
		}
	default:
		l.Logger.Debug("ignoring notify event", "type", ev.Type)
	}
}
