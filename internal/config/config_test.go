package config

import (
	"testing"
	"time"
)

func TestLoadAgentConfigDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("CHAUFFEUR_ID", "3")
	t.Setenv("REPLAY_PATH", "trace.jsonl")

	cfg, err := LoadAgentConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinDistanceM != 10 {
		t.Fatalf("default min distance: got %f", cfg.MinDistanceM)
	}
	if cfg.MinInterval != 5*time.Second {
		t.Fatalf("default min interval: got %s", cfg.MinInterval)
	}
	if cfg.SourceKind != "replay" {
		t.Fatalf("default source: got %s", cfg.SourceKind)
	}
}

func TestLoadAgentConfigRejectsMissingIdentity(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("CHAUFFEUR_ID", "")

	if _, err := LoadAgentConfig(); err == nil {
		t.Fatal("expected error without API_BASE_URL and CHAUFFEUR_ID")
	}
}

func TestLoadAgentConfigKafkaNeedsBrokers(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("CHAUFFEUR_ID", "3")
	t.Setenv("SOURCE_KIND", "kafka")
	t.Setenv("KAFKA_BROKERS", "")

	if _, err := LoadAgentConfig(); err == nil {
		t.Fatal("expected error for kafka source without brokers")
	}
}

func TestLoadMonitorConfigFollowList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("FOLLOW_DEMANDES", "4, 9,12")

	cfg, err := LoadMonitorConfig()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.FollowDemandes) != 3 || cfg.FollowDemandes[2] != 12 {
		t.Fatalf("follow list: got %v", cfg.FollowDemandes)
	}
}
