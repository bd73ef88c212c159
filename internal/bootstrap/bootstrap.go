// Package bootstrap builds the application graph from config. It is shared
// by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/alert"
	"github.com/PabloGalante/lifeline-agent/internal/adapters/flows"
	"github.com/PabloGalante/lifeline-agent/internal/adapters/llm"
	"github.com/PabloGalante/lifeline-agent/internal/adapters/location"
	firestorestore "github.com/PabloGalante/lifeline-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/lifeline-agent/internal/adapters/storage/memory"
	pgstore "github.com/PabloGalante/lifeline-agent/internal/adapters/storage/postgres"
	redisstore "github.com/PabloGalante/lifeline-agent/internal/adapters/storage/redis"
	alertapp "github.com/PabloGalante/lifeline-agent/internal/app/alert"
	"github.com/PabloGalante/lifeline-agent/internal/app/profile"
	"github.com/PabloGalante/lifeline-agent/internal/app/submission"
	"github.com/PabloGalante/lifeline-agent/internal/config"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// App holds the wired services. Close releases the backing connections.
type App struct {
	Profiles *profile.Service
	Pipeline *submission.Pipeline
	Alerts   *alertapp.Service

	closers []func() error
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New wires every backend selected by cfg and loads the stored profile.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := observability.Logger()
	app := &App{}

	store, err := app.newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	gateway, err := newGateway(ctx, cfg, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	dispatcher, err := app.newDispatcher(cfg, log)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var locator domain.LocationProvider = location.Unavailable{}
	if cfg.DefaultLocation != nil {
		locator = location.NewStatic(cfg.DefaultLocation.Lat, cfg.DefaultLocation.Lng)
	}

	app.Profiles = profile.NewService(store)
	app.Pipeline = submission.NewPipeline(gateway)
	app.Alerts = alertapp.NewService(app.Profiles, locator, dispatcher)

	if _, err := app.Profiles.Init(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return app, nil
}

func (a *App) newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.ProfileStore, error) {
	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using firestore storage", "project", cfg.GCPProjectID)
		s, err := firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("initializing firestore store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil

	case "redis":
		log.Info("using redis storage", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		s, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("initializing redis store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil

	case "postgres":
		log.Info("using postgres storage")
		s, err := pgstore.Open(ctx, cfg.PostgresDSN, cfg.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("initializing postgres store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil

	default:
		log.Info("using in-memory storage")
		return memstore.NewProfileStore(), nil
	}
}

func newGateway(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.AdviceGateway, error) {
	switch cfg.AdviceBackend {
	case "vertex":
		log.Info("using vertex advice gateway", "model", cfg.ModelName, "quick_model", cfg.QuickModelName)
		g, err := llm.NewVertexGateway(ctx, llm.VertexOptions{
			ProjectID:      cfg.GCPProjectID,
			Location:       cfg.GCPLocation,
			APIKey:         cfg.GeminiAPIKey,
			ModelName:      cfg.ModelName,
			QuickModelName: cfg.QuickModelName,
			Timeout:        cfg.AdviceTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing vertex gateway: %w", err)
		}
		return g, nil

	case "flows":
		log.Info("using flow server advice gateway", "url", cfg.FlowsURL)
		return flows.NewGateway(cfg.FlowsURL, cfg.AdviceTimeout), nil

	default:
		log.Info("using mock advice gateway")
		return llm.NewMockGateway(), nil
	}
}

func (a *App) newDispatcher(cfg *config.Config, log *slog.Logger) (domain.AlertDispatcher, error) {
	if cfg.AlertBackend != "mqtt" {
		log.Info("alerts are logged only")
		return alert.NewLogDispatcher(), nil
	}

	log.Info("using mqtt alerts", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)
	c, err := alert.Dial(alert.MQTTOptions{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		Timeout:  cfg.AdviceTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing mqtt dispatcher: %w", err)
	}
	a.closers = append(a.closers, func() error { c.Close(); return nil })
	return alert.NewMQTTDispatcher(c, cfg.MQTTTopic), nil
}
