package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/transport-tracking/internal/models"
)

type fakeAPI struct{ demande models.Demande }

func (f *fakeAPI) GetDemande(ctx context.Context, id int) (*models.Demande, error) {
	d := f.demande
	d.ID = id
	return &d, nil
}

func TestListenerResolvesAssignments(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header: %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(Event{Type: "heartbeat"})
		_ = conn.WriteJSON(Event{Type: EventMissionAssigned, DemandeID: 77})
		// keep the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	got := make(chan *models.Demande, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := NewListener(
		"ws"+strings.TrimPrefix(srv.URL, "http"),
		"tok",
		&fakeAPI{demande: models.Demande{Statut: models.StatutAcceptee}},
		func(d *models.Demande) { got <- d },
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	select {
	case d := <-got:
		if d.ID != 77 || d.Statut != models.StatutAcceptee {
			t.Fatalf("demande: %+v", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("assignment never delivered")
	}
}
