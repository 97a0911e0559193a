package mission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/transport-tracking/internal/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	statut   models.Statut
	err      error
	block    chan struct{} // when set, UpdateMissionProgress waits on it
	calls    int
	lastProg int
}

func (f *fakeAPI) UpdateMissionProgress(ctx context.Context, missionID, progress int) (models.Statut, error) {
	f.mu.Lock()
	f.calls++
	f.lastProg = progress
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.statut, nil
}

func TestStartScenario(t *testing.T) {
	api := &fakeAPI{statut: models.StatutEnCours}
	c := NewController(api, 42, models.StatutAcceptee, nil, nil)

	if c.Action() != ActionStart {
		t.Fatalf("ACCEPTEE must offer start, got %q", c.Action())
	}
	st, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if api.lastProg != models.ProgressStarted {
		t.Fatalf("expected progress 50, sent %d", api.lastProg)
	}
	if st != models.StatutEnCours || c.Statut() != models.StatutEnCours {
		t.Fatalf("displayed statut must be the echo, got %s", c.Statut())
	}
	if c.Action() != ActionFinish {
		t.Fatalf("EN_COURS must offer finish, got %q", c.Action())
	}
}

func TestFinishScenarioNavigatesBack(t *testing.T) {
	api := &fakeAPI{statut: models.StatutTerminee}
	completed := 0
	c := NewController(api, 42, models.StatutEnCours, func() { completed++ }, nil)

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if api.lastProg != models.ProgressFinished {
		t.Fatalf("expected progress 100, sent %d", api.lastProg)
	}
	if c.Statut() != models.StatutTerminee {
		t.Fatalf("statut: got %s", c.Statut())
	}
	if c.Action() != ActionNone {
		t.Fatal("terminal statut must offer no action")
	}
	if completed != 1 {
		t.Fatalf("completion callback fired %d times", completed)
	}
	// terminal is idempotent: no further transition is possible
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if completed != 1 {
		t.Fatalf("callback must fire once, fired %d times", completed)
	}
}

func TestFailureLeavesStatutUntouched(t *testing.T) {
	api := &fakeAPI{err: errors.New("network down")}
	c := NewController(api, 42, models.StatutAcceptee, nil, nil)

	before := c.Statut()
	_, err := c.Submit(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if c.Statut() != before {
		t.Fatalf("statut mutated on failure: %s -> %s", before, c.Statut())
	}
	if c.Action() != ActionStart {
		t.Fatal("action must still be offered after a failed submit")
	}
}

func TestDisplayedStatutIsServerEchoNotRequest(t *testing.T) {
	// server decides differently than the request implies
	api := &fakeAPI{statut: models.StatutAnnulee}
	c := NewController(api, 42, models.StatutAcceptee, nil, nil)

	st, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st != models.StatutAnnulee {
		t.Fatalf("displayed statut must equal the echo, got %s", st)
	}
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestInFlightGuard(t *testing.T) {
	api := &fakeAPI{statut: models.StatutEnCours, block: make(chan struct{})}
	c := NewController(api, 42, models.StatutAcceptee, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Submit(context.Background())
	}()

	// wait until the first round-trip is outstanding
	deadline := time.Now().Add(time.Second)
	for api.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first submit never reached the API")
		}
		time.Sleep(time.Millisecond)
	}

	// second press while the first is still in flight
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(api.block)
	<-done
	if api.callCount() != 1 {
		t.Fatalf("guard must prevent a second request, got %d calls", api.callCount())
	}
}

func TestPendingMissionOffersNoAction(t *testing.T) {
	c := NewController(&fakeAPI{}, 42, models.StatutEnAttente, nil, nil)
	if c.Action() != ActionNone {
		t.Fatal("EN_ATTENTE offers no driver action here")
	}
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}
