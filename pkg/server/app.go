package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/usecase"
	pkgch "SectorPulse/pkg/clickhouse"
	"SectorPulse/pkg/config"
	xhttp "SectorPulse/pkg/http"
	pkgkafka "SectorPulse/pkg/kafka"
	applogger "SectorPulse/pkg/logger"
	"SectorPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	runner    *usecase.PipelineRunner
	scheduler *usecase.Scheduler
	profiles  domrepo.ProfileStore
	consumer  *pkgkafka.Consumer
	kh        pkgkafka.MessageHandler
	chClient  *pkgch.Client
	queue     *queue.RedisQueue

	httpServer *xhttp.Server
	handlers   []xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.PipelineRunner,
	scheduler *usecase.Scheduler,
	profiles domrepo.ProfileStore,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	q *queue.RedisQueue,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		runner:    runner,
		scheduler: scheduler,
		profiles:  profiles,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		queue:     q,
	}
}

// SetHTTPHandlers injects the route handlers served by the HTTP server.
func (a *App) SetHTTPHandlers(hs ...xhttp.Handler) { a.handlers = hs }

type compositeHandler []xhttp.Handler

func (ch compositeHandler) RegisterRoutes(e *echo.Echo) {
	for _, h := range ch {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.seedProfiles(ctx); err != nil {
		return err
	}

	// Aggregated log shipping rides on the job queue when Redis is up.
	if a.queue != nil {
		a.l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "logs.aggregated",
			Publisher:      a.queue,
		})
		if err := a.queue.Start(); err != nil {
			a.l.Error("queue start error", applogger.Error(err))
			return err
		}
		a.queue.StartRetryProcessor()
		a.l.Info("refresh queue started")
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	a.scheduler.Start(ctx)
	a.l.Info("scheduler started",
		applogger.Duration("interval", a.cfg.Pipeline.Interval),
		applogger.Bool("run_on_startup", a.cfg.Pipeline.RunOnStartup),
	)

	a.httpServer = xhttp.NewServer(compositeHandler(a.handlers),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// seedProfiles writes the configured ticker universe to the warehouse so the
// sector join always reflects the current config.
func (a *App) seedProfiles(ctx context.Context) error {
	profiles := make([]models.TickerProfile, 0, len(a.cfg.Universe))
	for _, u := range a.cfg.Universe {
		profiles = append(profiles, models.TickerProfile{Ticker: u.Ticker, Sector: u.Sector})
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.profiles.UpsertProfiles(cctx, profiles); err != nil {
		a.l.Error("seed profiles error", applogger.Error(err))
		return err
	}
	a.l.Info("universe seeded", applogger.Int("tickers", len(profiles)))
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.l.Warn("queue stop error", applogger.Error(err))
		}
	}

	// closes the return publisher
	a.runner.Close()

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
