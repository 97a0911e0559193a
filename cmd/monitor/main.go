package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/example/transport-tracking/internal/api"
	"github.com/example/transport-tracking/internal/config"
	"github.com/example/transport-tracking/internal/follow"
	"github.com/example/transport-tracking/internal/geo"
	"github.com/example/transport-tracking/internal/logging"
	"github.com/example/transport-tracking/internal/mirror"
	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/observability"
)

// The monitor is the administrator-side companion: it drains the
// platform's chauffeur-position firehose into a Redis GEO index and a
// Postgres breadcrumb trail, and optionally follows individual
// demandes over the REST API.
func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadMonitorConfig()
	if err != nil {
		logging.NewLogger("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	var sinks mirror.Fanout
	var geoMirror *mirror.GeoMirror
	if cfg.RedisAddr != "" {
		geoMirror = mirror.NewGeoMirror(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
		defer geoMirror.Close()
		sinks = append(sinks, geoMirror)
	}
	if cfg.PGDSN != "" && strings.EqualFold(os.Getenv("MIGRATE"), "true") {
		if db, err := sql.Open("postgres", cfg.PGDSN); err == nil {
			if b, err := os.ReadFile(filepath.Join("migrations", "001_create_breadcrumbs.sql")); err == nil {
				if _, err := db.Exec(string(b)); err != nil {
					logger.Error("migration failed", "error", err)
				} else {
					logger.Info("migration applied", "file", "001_create_breadcrumbs.sql")
				}
			}
			_ = db.Close()
		} else {
			logger.Error("migration db open error", "error", err)
		}
	}
	if cfg.PGDSN != "" {
		store, err := mirror.NewBreadcrumbStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}
	if len(sinks) == 0 {
		logger.Warn("no sinks configured, positions will only be counted")
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if geoMirror != nil {
				if err := geoMirror.Ping(r.Context()); err != nil {
					http.Error(w, "redis not ready", 503)
					return
				}
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		logger.Info("metrics/health listening", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.FollowDemandes) > 0 {
		client := api.NewClient(cfg.APIBaseURL, cfg.APIToken)
		for _, id := range cfg.FollowDemandes {
			f := follow.NewFollower(client, id, cfg.PollInterval, logger)
			go f.Run(ctx)
		}
	}

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroup, MinBytes: 10e3, MaxBytes: 10e6})
	defer func() { _ = r.Close() }()

	logger.Info("monitor consuming", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers, "group", cfg.KafkaGroup)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down monitor")
				return
			}
			logger.Warn("kafka read error", "error", err, "backoff", backoff.String())
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		var u models.LocationUpdate
		if err := json.Unmarshal(m.Value, &u); err != nil {
			logger.Warn("invalid location update", "error", err)
			continue
		}
		if u.ChauffeurID == "" || !geo.Valid(u.Position.Latitude, u.Position.Longitude) {
			logger.Warn("discarding malformed location update", "chauffeur_id", u.ChauffeurID)
			continue
		}

		if err := mirror.RecordWithRetry(ctx, sinks, u.ChauffeurID, u.Position, 3, 200*time.Millisecond); err != nil {
			observability.MirrorErrors.Inc()
			logger.Error("mirror write failed", "chauffeur_id", u.ChauffeurID, "error", err)
			continue
		}
		observability.MirrorUpdates.Inc()
	}
}
