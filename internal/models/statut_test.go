package models

import "testing"

func TestNextProgress(t *testing.T) {
	cases := []struct {
		s    Statut
		want int
		ok   bool
	}{
		{StatutAcceptee, ProgressStarted, true},
		{StatutEnCours, ProgressFinished, true},
		{StatutEnAttente, 0, false},
		{StatutTerminee, 0, false},
		{StatutAnnulee, 0, false},
	}
	for _, c := range cases {
		got, ok := c.s.NextProgress()
		if got != c.want || ok != c.ok {
			t.Fatalf("%s: got (%d,%v), want (%d,%v)", c.s, got, ok, c.want, c.ok)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StatutTerminee.Terminal() || !StatutAnnulee.Terminal() {
		t.Fatal("TERMINEE and ANNULEE must be terminal")
	}
	if StatutEnCours.Terminal() {
		t.Fatal("EN_COURS must not be terminal")
	}
}
