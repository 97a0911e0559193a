package models

// Statut is the mission lifecycle vocabulary. The set is closed and the
// transitions are owned and enforced by the server; the client keeps
// the enum only to pick the next action and to validate intent before
// submitting.
type Statut string

const (
	StatutEnAttente Statut = "EN_ATTENTE"
	StatutAcceptee  Statut = "ACCEPTEE"
	StatutEnCours   Statut = "EN_COURS"
	StatutTerminee  Statut = "TERMINEE"
	StatutAnnulee   Statut = "ANNULEE"
)

// Progress values the server accepts in place of a status string.
const (
	ProgressStarted  = 50
	ProgressFinished = 100
)

func (s Statut) Known() bool {
	switch s {
	case StatutEnAttente, StatutAcceptee, StatutEnCours, StatutTerminee, StatutAnnulee:
		return true
	}
	return false
}

// Terminal reports whether no further driver action exists for s.
func (s Statut) Terminal() bool {
	return s == StatutTerminee || s == StatutAnnulee
}

// NextProgress returns the single progress value that is a legal
// submission from s. ACCEPTEE maps to "start" (50) and EN_COURS to
// "finish" (100); every other status has no driver action.
func (s Statut) NextProgress() (int, bool) {
	switch s {
	case StatutAcceptee:
		return ProgressStarted, true
	case StatutEnCours:
		return ProgressFinished, true
	}
	return 0, false
}
