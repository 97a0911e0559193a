package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AgentConfig captures all tunable parameters for the chauffeur agent.
// Values are primarily loaded from environment variables with sane
// defaults so the binary can run locally without excessive setup.
type AgentConfig struct {
	APIBaseURL  string
	APIToken    string
	ChauffeurID int

	HTTPAddr        string
	ShutdownTimeout time.Duration

	SourceKind string // "replay" or "kafka"
	ReplayPath string
	// cadence of replayed samples; real sources pace themselves
	ReplayInterval time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	MinDistanceM float64
	MinInterval  time.Duration

	GeocodeEndpoint string
	NotifyWSURL     string

	LogLevel string
}

func defaultAgentConfig() AgentConfig {
	return AgentConfig{
		HTTPAddr:        ":8081",
		ShutdownTimeout: 15 * time.Second,
		SourceKind:      "replay",
		ReplayInterval:  time.Second,
		KafkaTopic:      "gps-samples",
		KafkaGroup:      "chauffeur-agent",
		MinDistanceM:    10,
		MinInterval:     5 * time.Second,
		GeocodeEndpoint: "https://nominatim.openstreetmap.org",
		LogLevel:        "info",
	}
}

// LoadDotEnv loads an optional .env file before the environment is
// read. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func LoadAgentConfig() (AgentConfig, error) {
	cfg := defaultAgentConfig()
	var errs []error

	setStringFromEnv(&cfg.APIBaseURL, "API_BASE_URL")
	cfg.APIToken = os.Getenv("API_TOKEN")
	setIntFromEnv(&cfg.ChauffeurID, "CHAUFFEUR_ID", &errs)

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	setStringFromEnv(&cfg.SourceKind, "SOURCE_KIND")
	setStringFromEnv(&cfg.ReplayPath, "REPLAY_PATH")
	setDurationFromEnv(&cfg.ReplayInterval, "REPLAY_INTERVAL", &errs)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setStringFromEnv(&cfg.KafkaGroup, "KAFKA_GROUP")

	setFloatFromEnv(&cfg.MinDistanceM, "TRACKER_MIN_DISTANCE_M", &errs)
	setDurationFromEnv(&cfg.MinInterval, "TRACKER_MIN_INTERVAL", &errs)

	setStringFromEnv(&cfg.GeocodeEndpoint, "GEOCODE_ENDPOINT")
	setStringFromEnv(&cfg.NotifyWSURL, "NOTIFY_WS_URL")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL is required"))
	}
	if cfg.ChauffeurID <= 0 {
		errs = append(errs, fmt.Errorf("CHAUFFEUR_ID must be > 0"))
	}
	switch cfg.SourceKind {
	case "replay", "kafka":
	default:
		errs = append(errs, fmt.Errorf("SOURCE_KIND must be replay or kafka, got %q", cfg.SourceKind))
	}
	if cfg.SourceKind == "kafka" && len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, fmt.Errorf("KAFKA_BROKERS is required for the kafka source"))
	}
	if cfg.SourceKind == "replay" && cfg.ReplayPath == "" {
		errs = append(errs, fmt.Errorf("REPLAY_PATH is required for the replay source"))
	}

	return cfg, errors.Join(errs...)
}

// MonitorConfig covers the fleet-monitor process.
type MonitorConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	RedisAddr     string
	RedisPassword string
	RedisGeoKey   string

	PGDSN string

	APIBaseURL     string
	APIToken       string
	FollowDemandes []int
	PollInterval   time.Duration

	MetricsAddr string
	LogLevel    string
}

func defaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		KafkaTopic:   "chauffeur-positions",
		KafkaGroup:   "fleet-monitor",
		RedisGeoKey:  "chauffeurs_geo",
		PollInterval: 10 * time.Second,
		MetricsAddr:  ":2112",
		LogLevel:     "info",
	}
}

func LoadMonitorConfig() (MonitorConfig, error) {
	cfg := defaultMonitorConfig()
	var errs []error

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setStringFromEnv(&cfg.KafkaGroup, "KAFKA_GROUP")

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setStringFromEnv(&cfg.RedisGeoKey, "REDIS_GEO_KEY")

	cfg.PGDSN = os.Getenv("PG_DSN")

	setStringFromEnv(&cfg.APIBaseURL, "API_BASE_URL")
	cfg.APIToken = os.Getenv("API_TOKEN")
	if v := os.Getenv("FOLLOW_DEMANDES"); v != "" {
		for _, raw := range splitAndTrim(v) {
			id, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid FOLLOW_DEMANDES entry %q: %w", raw, err))
				continue
			}
			cfg.FollowDemandes = append(cfg.FollowDemandes, id)
		}
	}
	setDurationFromEnv(&cfg.PollInterval, "POLL_INTERVAL", &errs)

	setStringFromEnv(&cfg.MetricsAddr, "METRICS_ADDR")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, fmt.Errorf("KAFKA_BROKERS is required"))
	}
	if len(cfg.FollowDemandes) > 0 && cfg.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL is required when FOLLOW_DEMANDES is set"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setIntFromEnv(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
