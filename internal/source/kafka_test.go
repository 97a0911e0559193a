package source

import (
	"testing"
	"time"
)

func TestParseRaw(t *testing.T) {
	s, err := parseRaw([]byte(`{"lat":"36.7525","lon":"3.0420","ts":"1700000000","speed":"12.5"}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Latitude != 36.7525 || s.Longitude != 3.0420 {
		t.Fatalf("coords: %f,%f", s.Latitude, s.Longitude)
	}
	if s.SpeedMps != 12.5 {
		t.Fatalf("speed: %f", s.SpeedMps)
	}
	if !s.CapturedAt.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("captured at: %s", s.CapturedAt)
	}
}

func TestParseRawRejectsGarbage(t *testing.T) {
	if _, err := parseRaw([]byte(`{"lat":"abc","lon":"3.0"}`)); err == nil {
		t.Fatal("expected error for non-numeric latitude")
	}
	if _, err := parseRaw([]byte(`{"lat":"95","lon":"3.0"}`)); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
	if _, err := parseRaw([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
