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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/hawkline-systems/hawkline/internal/alerting"
	"github.com/hawkline-systems/hawkline/internal/config"
	"github.com/hawkline-systems/hawkline/internal/engine"
	"github.com/hawkline-systems/hawkline/internal/logging"
	natspub "github.com/hawkline-systems/hawkline/internal/messaging/nats"
	"github.com/hawkline-systems/hawkline/internal/repository"
	"github.com/hawkline-systems/hawkline/internal/rulefile"
	"github.com/hawkline-systems/hawkline/internal/server"
	"github.com/hawkline-systems/hawkline/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine and its HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	opts := engine.Options{
		CorrelationCapacity: cfg.Engine.CorrelationCapacity,
		AnalyticsCapacity:   cfg.Engine.AnalyticsCapacity,
	}

	if cfg.Redis.Enabled {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		defer client.Close()
		opts.CooldownStore = alerting.NewRedisCooldownStore(client)
		log.Info("using redis cooldown store", "url", cfg.Redis.URL)
	}

	eng := engine.New(opts)

	if cfg.Rules.File != "" {
		rules, err := rulefile.Load(cfg.Rules.File)
		if err != nil {
			return fmt.Errorf("failed to load rule file: %w", err)
		}
		for _, r := range rules.Correlation {
			if err := eng.AddCorrelationRule(r); err != nil {
				return err
			}
		}
		for _, r := range rules.Alerts {
			if err := eng.AddAlertRule(r); err != nil {
				return err
			}
		}
		log.Info("loaded rule file", "path", cfg.Rules.File,
			"correlation_rules", len(rules.Correlation), "alert_rules", len(rules.Alerts))
	}

	var repo repository.Repository
	if cfg.Database.Enabled {
		connString := cfg.Database.ConnString()
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			return fmt.Errorf("failed to initialize migrations: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		pg, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pg.Close()
		repo = pg
		log.Info("alert archive enabled", "database", cfg.Database.Database)
	}

	var publisher service.Publisher
	if cfg.NATS.Enabled {
		natsCfg := natspub.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		pub, err := natspub.Connect(natsCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer pub.Close()
		publisher = pub
		log.Info("publishing to NATS", "url", cfg.NATS.URL)
	}

	svc := service.New(eng, repo, publisher, log)
	handler := server.NewHandler(svc, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("hawkline listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
