// @title Pet Clinic Scheduling API
// @version 1.0
// @description Turnos, recordatorios e historial clínico de la clínica veterinaria.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-clinic-scheduling/internal/adapters/auth/odin"
	mem "pet-clinic-scheduling/internal/adapters/storage/memory"
	"pet-clinic-scheduling/internal/adapters/storage/redisstore"
	"pet-clinic-scheduling/internal/adapters/storage/sqlstore"
	"pet-clinic-scheduling/internal/config"
	"pet-clinic-scheduling/internal/housekeeping"
	"pet-clinic-scheduling/internal/platform/logger"
	"pet-clinic-scheduling/internal/ports/auth"
	"pet-clinic-scheduling/internal/ports/kv"
	"pet-clinic-scheduling/internal/router"

	"go.uber.org/multierr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, locker, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()
	log.Info("store ready", map[string]any{"driver": cfg.StoreDriver})

	var verifier auth.AuthVerifier // nil = modo dev (X-Debug-User-*)
	if cfg.OdinEnabled() {
		client, err := odin.NewClient(odin.Config{BaseURL: cfg.OdinBaseURL, APIKey: cfg.OdinAPIKey})
		if err != nil {
			return err
		}
		verifier = odin.NewVerifier(client)
	} else {
		log.Warn("odin not configured, running in dev auth mode", nil)
	}

	app := router.New(router.Options{
		AuthVerifier: verifier,
		Store:        store,
		Locker:       locker,
		Logger:       log,
		Location:     cfg.Location,
	})

	if cfg.HousekeepingSchedule != "" && cfg.HousekeepingSchedule != "off" {
		hk := housekeeping.New(app.Reminders, log)
		if err := hk.Start(cfg.HousekeepingSchedule); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			hk.Stop(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore elige backend según STORE_DRIVER. Con Redis el lock es distribuido
// (varias instancias); el resto usa el lock in-process.
func openStore(ctx context.Context, cfg config.Config) (kv.Store, kv.Locker, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		s, err := sqlstore.Open(openCtx, sqlstore.DriverPostgres, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, mem.NewKeyLocker(), nil
	case config.StoreSQLite:
		s, err := sqlstore.Open(openCtx, sqlstore.DriverSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, mem.NewKeyLocker(), nil
	case config.StoreRedis:
		s, err := redisstore.Open(openCtx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, redisstore.NewLocker(s.Client(), 0), nil
	default:
		return mem.NewStore(), mem.NewKeyLocker(), nil
	}
}
