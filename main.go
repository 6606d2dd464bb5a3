package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"amira/adapters/llm"
	"amira/adapters/postgres"
	"amira/adapters/postgres/migrations"
	"amira/adapters/telegram"
	"amira/domain/core"
	"amira/internal"
	"amira/internal/analytics"
	"amira/internal/config"
	"amira/internal/errors"
	"amira/internal/i18n"
	"amira/internal/report"
	"amira/internal/therapy"
	"amira/ui"
)

// initDatabase connects to PostgreSQL and applies pending migrations.
func initDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		return nil, errors.Wrap(err, "migrations failed")
	}
	return db, nil
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	store := postgres.NewStore(db)
	patients := postgres.NewPatientRepository(store)
	sessions := postgres.NewSessionRepository(store)
	reports := postgres.NewReportRepository(store)

	lang, err := llm.NewService(cfg.AI, logger)
	if err != nil {
		log.Fatalf("language service error: %v", err)
	}

	clock := core.SystemClock{}
	engine := analytics.NewEngine(cfg.Therapy.EngagementTolerance)
	localizer := i18n.NewProvider()

	controller := therapy.NewSessionController(sessions, engine, &cfg.Therapy, clock, logger)
	compiler := report.NewCompiler(patients, sessions, reports, lang, engine, &cfg.Therapy, clock, logger)

	messenger := telegram.NewClient(cfg.Telegram.Token)
	machine := therapy.NewMachine(patients, controller, lang, localizer, messenger, compiler, engine, &cfg.Therapy, clock, logger)
	dispatcher := therapy.NewDispatcher(machine, &cfg.Therapy, logger)
	defer dispatcher.Stop()

	app := ui.NewApp(dispatcher, compiler, reports, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		poller := telegram.NewPoller(messenger, dispatcher, cfg.Telegram.PollTimeout, logger)
		g.Go(func() error {
			logger.Info("telegram poller started")
			err := poller.Run(gctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	} else {
		logger.Warn("TELEGRAM_TOKEN not set, webhook ingress only")
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("shutdown error: %v", err)
	}
	logger.Info("shutdown complete")
}
