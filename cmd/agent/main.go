package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/transport-tracking/internal/api"
	"github.com/example/transport-tracking/internal/config"
	"github.com/example/transport-tracking/internal/geocode"
	"github.com/example/transport-tracking/internal/httpapi"
	"github.com/example/transport-tracking/internal/logging"
	"github.com/example/transport-tracking/internal/mission"
	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/notify"
	"github.com/example/transport-tracking/internal/source"
	"github.com/example/transport-tracking/internal/tracker"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadAgentConfig()
	if err != nil {
		logging.NewLogger("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken)
	geocoder := geocode.NewClient(cfg.GeocodeEndpoint)

	var src source.Source
	switch cfg.SourceKind {
	case "kafka":
		ks := source.NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, logger)
		defer ks.Close()
		src = ks
	default:
		src = source.NewReplaySource(cfg.ReplayPath, cfg.ReplayInterval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep := tracker.New(tracker.Config{
		API:          client,
		Geocoder:     geocoder,
		Source:       src,
		ChauffeurID:  cfg.ChauffeurID,
		MinDistanceM: cfg.MinDistanceM,
		MinInterval:  cfg.MinInterval,
		Logger:       logger,
	})
	// a denied source leaves the agent up with tracking unavailable;
	// the status endpoint keeps reflecting that state
	if err := rep.Start(ctx); err != nil {
		logger.Error("position tracking unavailable", "error", err)
	}
	defer rep.Stop()

	var mu sync.Mutex
	var active *mission.Controller
	getController := func() *mission.Controller {
		mu.Lock()
		defer mu.Unlock()
		return active
	}
	adopt := func(d *models.Demande) {
		if d.Statut.Terminal() || d.Statut == models.StatutEnAttente {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if active != nil && active.MissionID() == d.ID {
			active.Refresh(d.Statut)
			return
		}
		id := d.ID
		active = mission.NewController(client, id, d.Statut, func() {
			logger.Info("mission completed, back to dashboard", "demande_id", id)
			mu.Lock()
			if active != nil && active.MissionID() == id {
				active = nil
			}
			mu.Unlock()
		}, logger)
		logger.Info("active mission adopted", "demande_id", id, "statut", string(d.Statut))
	}

	if missions, err := client.ListMissions(ctx, cfg.ChauffeurID); err != nil {
		logger.Warn("mission list fetch failed", "error", err)
	} else {
		for i := range missions {
			adopt(&missions[i])
		}
	}

	if cfg.NotifyWSURL != "" {
		listener := notify.NewListener(cfg.NotifyWSURL, cfg.APIToken, client, adopt, logger)
		go listener.Run(ctx)
	}

	handler := httpapi.NewServer(logger, rep.Snapshot, getController)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}
	go func() {
		logger.Info("agent listening", "addr", cfg.HTTPAddr, "chauffeur_id", cfg.ChauffeurID)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	rep.Stop()
}
