package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlaceName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("wrong path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"display_name": "Alger Centre, Alger"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	name, err := c.PlaceName(context.Background(), 36.75, 3.04)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Alger Centre, Alger" {
		t.Fatalf("got %q", name)
	}
}

func TestPlaceNameEmptyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.PlaceName(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for empty display_name")
	}
}
