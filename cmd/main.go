package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/lineup/internal/adapters/http/api"
	"github.com/okian/lineup/internal/adapters/http/site"
	"github.com/okian/lineup/internal/adapters/http/swagger"
	"github.com/okian/lineup/internal/adapters/mq/queue"
	"github.com/okian/lineup/internal/adapters/mq/worker"
	"github.com/okian/lineup/internal/adapters/repository"
	"github.com/okian/lineup/internal/adapters/roster"
	"github.com/okian/lineup/internal/adapters/ws"
	app "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/internal/config"
	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	corsMaxAge                = 300
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a, err := build(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := a.start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend", cfg.BackendURL),
			logger.String("prefs_backend", cfg.PrefsBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	a.stop(shutdownCtx)

	log.Info(shutdownCtx, "server stopped")
}

// application holds the wired components of the reveal console.
type application struct {
	handler  http.Handler
	svc      *app.Service
	hub      *ws.Hub
	queue    *queue.InMemoryQueue
	consumer *worker.Consumer
	store    repository.Store
}

// build wires every component from cfg. Nothing runs until start.
func build(ctx context.Context, cfg *config.Config) (*application, error) {
	log := logger.Get()

	store, err := repository.Open(ctx, repository.Settings{
		Backend:  cfg.PrefsBackend,
		File:     cfg.PrefsFile,
		RedisURL: cfg.RedisURL,
	}, repository.WithTTL(cfg.PrefsTTL()), repository.WithLogger(log.Named("prefs")))
	if err != nil {
		return nil, err
	}

	client, err := roster.New(cfg.BackendURL,
		roster.WithTimeout(cfg.RequestTimeout()),
		roster.WithLogger(log.Named("roster")),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	b := board.New(board.WithLabels(cfg.TeamALabel, cfg.TeamBLabel))
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.EventQueueSize))
	hub := ws.NewHub(ws.WithView(b.View))
	consumer := worker.NewConsumer(q, hub)

	svc := app.New(client, b,
		app.WithPreferences(repository.NewPreferences(store)),
		app.WithEvents(q),
		app.WithViewers(hub),
		app.WithRunner(worker.NewRunner(
			worker.WithStartDelay(cfg.StartDelay()),
			worker.WithSettleDelay(cfg.SettleDelay()),
		)),
		app.WithDefaultLabels(cfg.TeamALabel, cfg.TeamBLabel),
		app.WithCompletionResetDelay(cfg.CompletionResetDelay()),
		app.WithLogger(log.Named("service")),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc,
		api.WithStream(ws.NewHandler(ctx, hub, cfg.AllowedOrigins, cfg.WSSendBuffer)),
		api.WithLogger(log.Named("api")),
	).Register(ctx, mux)

	return &application{
		handler:  routes(mux, cfg.AllowedOrigins),
		svc:      svc,
		hub:      hub,
		queue:    q,
		consumer: consumer,
		store:    store,
	}, nil
}

// routes wraps mux with request id, real ip, panic recovery and CORS.
func routes(mux http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	r.Mount("/", mux)
	return r
}

func (a *application) start(ctx context.Context) error {
	if err := a.svc.Start(ctx); err != nil {
		return err
	}
	go a.hub.Run(ctx)
	go a.consumer.Run(ctx)
	return nil
}

// stop ends the reveal, drains the consumer and closes the preference store.
func (a *application) stop(ctx context.Context) {
	log := logger.Get()

	a.svc.Stop()
	_ = a.queue.Close()
	if err := a.consumer.Shutdown(ctx); err != nil {
		log.Warn(ctx, "consumer shutdown failed", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		log.Warn(ctx, "preference store close failed", logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the gauges GetStats maintains.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateWSClients(stats.WSClients)
}
