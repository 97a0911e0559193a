package models

import "time"

type Coord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionSample is a single reading from the location subsystem.
// Samples are ephemeral: the reporter keeps only the latest one and
// nothing is ever written to local storage.
type PositionSample struct {
	Coord
	AccuracyM  float64   `json:"accuracy,omitempty"` // meters, 0 when unknown
	Heading    float64   `json:"heading,omitempty"`  // degrees, 0..360
	SpeedMps   float64   `json:"speed,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// LocationUpdate is the shape published on the platform's
// driver-location firehose topic.
type LocationUpdate struct {
	ChauffeurID string         `json:"chauffeur_id"`
	Position    PositionSample `json:"position"`
}

type Chauffeur struct {
	ID        int     `json:"id"`
	Nom       string  `json:"nom,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Demande is a transport request as the API returns it. The statut
// field is a cached copy of server-owned state and can go stale; it is
// only ever refreshed from a server response, never mutated locally.
type Demande struct {
	ID             int        `json:"id"`
	AdresseDepart  string     `json:"adresseDepart"`
	AdresseArrivee string     `json:"adresseArrivee"`
	DepartCoords   string     `json:"departCoords,omitempty"`  // "lat,lon"
	ArriveeCoords  string     `json:"arriveeCoords,omitempty"` // "lat,lon"
	Statut         Statut     `json:"statut"`
	PrixEstime     float64    `json:"prixEstime"`
	ClientID       int        `json:"clientId"`
	Chauffeur      *Chauffeur `json:"chauffeur,omitempty"` // nil until assignment
}
