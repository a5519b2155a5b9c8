// ABOUTME: Per-invocation wiring shared by every command
// ABOUTME: Builds the logger, session store, session manager, router and API client from config

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fuelwise/fuelwise-cli/internal/client"
	"github.com/fuelwise/fuelwise-cli/internal/config"
	"github.com/fuelwise/fuelwise-cli/internal/export"
	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/fuelwise/fuelwise-cli/internal/kvstore"
	"github.com/fuelwise/fuelwise-cli/internal/logger"
	"github.com/fuelwise/fuelwise-cli/internal/roles"
	"github.com/fuelwise/fuelwise-cli/internal/router"
	"github.com/fuelwise/fuelwise-cli/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msgNoSession = "no hay sesión activa. Ejecuta 'fuelwise login' primero"
	msgDenied    = "Acceso Denegado: no tienes permisos para esta operación"
)

// app holds the collaborators one command invocation needs
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   kvstore.Store
	redis   *redis.Client
	router  *router.Router
	session *session.Manager
	client  *client.Client
	history *export.History
}

// openApp loads config and restores the persisted session
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	if err := a.openStore(ctx); err != nil {
		_ = logger.Sync(log)
		return nil, err
	}

	var mgr *session.Manager
	a.router = router.New(func() bool { return mgr.Get().IsAuthenticated })
	mgr = session.New(a.store, session.WithNavigator(a.router), session.WithLogger(log))
	a.session = mgr
	if err := mgr.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	a.client = client.New(cfg.APIURL,
		client.WithCredential(mgr.Credential),
		client.WithUnauthorizedHandler(func(ctx context.Context) {
			if err := mgr.Logout(ctx); err != nil {
				log.Warn("logout after 401 failed", zap.Error(err))
			}
		}),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
	)
	a.history = export.NewHistory(cfg.ConfigDir)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store {
	case config.StoreRedis:
		opts, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		store, err := kvstore.NewRedis(ctx, a.redis, a.cfg.RedisPrefix, a.log)
		if err != nil {
			_ = a.redis.Close()
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.store = store
	default:
		store, err := kvstore.NewFile(a.cfg.ConfigDir)
		if err != nil {
			return err
		}
		a.store = store
	}
	return nil
}

// Close stops the session and releases the store
func (a *app) Close() {
	if a.session != nil {
		a.session.Teardown()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close store", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = logger.Sync(a.log)
}

// authorize returns the active session, or prints why the command cannot run
// and the exit code to return. allowed nil means any signed-in user.
func (a *app) authorize(w io.Writer, allowed func(roles.Permissions) bool) (session.Session, int) {
	sess := a.session.Get()
	if !sess.IsAuthenticated {
		fmt.Fprintf(w, "Error: %s\n", msgNoSession)
		return sess, 1
	}
	if allowed != nil && !allowed(sess.Permissions()) {
		fmt.Fprintf(w, "Error: %s\n", msgDenied)
		return sess, 1
	}
	return sess, 0
}

// loadFleet fetches types and vehicles concurrently
func (a *app) loadFleet(ctx context.Context) ([]fleet.VehicleType, []fleet.Vehicle, error) {
	var types []fleet.VehicleType
	var vehicles []fleet.Vehicle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = a.client.VehicleTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		vehicles, err = a.client.Vehicles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	for _, v := range vehicles {
		if _, ok := fleet.NormalizeAvailability(v.Availability); !ok {
			a.log.Warn("unrecognized availability", zap.Int("vehicle", v.ID), zap.String("value", v.Availability))
		}
	}
	return types, vehicles, nil
}

// exitCode maps an error to the command exit code: 1 for validation and
// authorization failures, 2 for everything else
func exitCode(err error) int {
	if _, ok := fleet.AsFieldErrors(err); ok {
		return 1
	}
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, session.ErrExpired) {
		return 1
	}
	return 2
}

// fail prints err the way users see it and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.Message(err))
	return exitCode(err)
}

// formatJSON indents v for --json output
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
