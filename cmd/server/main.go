package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/restart"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/bootstrap"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"

	_ "github.com/storefront/backend/internal/plugins/fixedrate"
	_ "github.com/storefront/backend/internal/plugins/manualrates"
	_ "github.com/storefront/backend/internal/plugins/pickupinstore"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", bootstrap.Version),
		zap.String("port", cfg.App.Port),
	)

	tracing, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, bootstrap.Version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	finder, err := engine.NewTypeFinder(engine.Default, cfg.Plugins.SkipPattern)
	if err != nil {
		log.Fatal("Invalid plugin skip pattern", zap.Error(err))
	}

	eng := engine.New(cfg, finder, engine.WithLogger(log))
	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	err = eng.ConfigureServices(startCtx)
	cancelStart()
	if err != nil {
		log.Fatal("Failed to configure services", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	eng.ConfigureRequestPipeline(r)

	tasks, err := engine.Resolve[*scheduler.Scheduler](eng)
	if err != nil {
		log.Fatal("Failed to resolve scheduler", zap.Error(err))
	}
	runCtx, stopTasks := context.WithCancel(context.Background())
	defer stopTasks()
	if err := tasks.Start(runCtx); err != nil {
		log.Fatal("Failed to start scheduled tasks", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	restartRequested := make(chan struct{})
	var requestRestart sync.Once
	files, err := engine.Resolve[fileprovider.FileProvider](eng)
	if err != nil {
		log.Fatal("Failed to resolve file provider", zap.Error(err))
	}
	watcher, err := restart.NewWatcher(files.MapPath(webhelper.RestartMarkerPath), func() {
		requestRestart.Do(func() { close(restartRequested) })
	}, restart.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to watch restart marker", zap.Error(err))
	}
	go watcher.Run(runCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	restarting := false
	select {
	case <-quit:
	case <-restartRequested:
		restarting = true
	}
	_ = watcher.Close()
	log.Info("Shutting down server...", zap.Bool("restart", restarting))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tasks.Stop(ctx); err != nil {
		log.Error("Scheduled tasks did not stop in time", zap.Error(err))
	}
	shutdown(eng, log)
	if err := tracing.Shutdown(context.Background()); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")

	if restarting {
		reexec(log)
	}
}

// reexec replaces the process with a fresh copy of the same binary
func reexec(log *zap.Logger) {
	exe, err := os.Executable()
	if err != nil {
		log.Error("Cannot locate executable for restart", zap.Error(err))
		return
	}
	log.Info("Restarting", zap.String("executable", exe))
	_ = logger.Sync(log)
	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		log.Error("Restart failed", zap.Error(err))
	}
}

// shutdown releases the database and cache connections
func shutdown(eng *engine.Engine, log *zap.Logger) {
	if db, err := engine.Resolve[*persistence.Database](eng); err == nil {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
	if f, err := engine.Resolve[*cache.Factory](eng); err == nil {
		if err := f.Close(); err != nil {
			log.Error("Error closing cache connections", zap.Error(err))
		}
	}
}
