package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/transport-tracking/internal/models"
)

func TestUpdatePositionRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(204)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123")
	err := c.UpdatePosition(context.Background(), 7, models.Coord{Latitude: 36.75, Longitude: 3.04})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "PUT /api/Chauffeur/UpdatePosition/7" {
		t.Fatalf("wrong call: %s", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("wrong auth header: %q", gotAuth)
	}
	if gotBody["latitude"] != 36.75 || gotBody["longitude"] != 3.04 {
		t.Fatalf("wrong body: %v", gotBody)
	}
}

func TestUpdateMissionProgressEchoesServerStatut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Chauffeur/UpdateMissionProgress/42" {
			t.Errorf("wrong path %s", r.URL.Path)
		}
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["progress"] != 50 {
			t.Errorf("wrong progress %d", body["progress"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "statut": "EN_COURS"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	st, err := c.UpdateMissionProgress(context.Background(), 42, 50)
	if err != nil {
		t.Fatal(err)
	}
	if st != models.StatutEnCours {
		t.Fatalf("expected EN_COURS, got %s", st)
	}
}

func TestUpdateMissionProgressRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	if _, err := c.UpdateMissionProgress(context.Background(), 42, 100); err == nil {
		t.Fatal("expected error on success=false")
	}
}

func TestGetDemande(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"demande": map[string]any{
				"id":        9,
				"statut":    "ACCEPTEE",
				"chauffeur": map[string]any{"id": 3, "latitude": 1.5, "longitude": 2.5},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	d, err := c.GetDemande(context.Background(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != 9 || d.Statut != models.StatutAcceptee {
		t.Fatalf("unexpected demande %+v", d)
	}
	if d.Chauffeur == nil || d.Chauffeur.Latitude != 1.5 {
		t.Fatalf("chauffeur position not decoded: %+v", d.Chauffeur)
	}
}

func TestNon2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	err := c.UpdatePosition(context.Background(), 1, models.Coord{})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 500 {
		t.Fatalf("expected *Error with status 500, got %v", err)
	}
}
