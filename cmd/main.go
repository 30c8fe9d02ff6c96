// Command pitwall connects to a timing relay, maintains the live session
// state, and serves the resulting snapshot over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/okian/pitwall/internal/adapters/display"
	"github.com/okian/pitwall/internal/adapters/http/api"
	"github.com/okian/pitwall/internal/adapters/mq/queue"
	"github.com/okian/pitwall/internal/adapters/mq/worker"
	"github.com/okian/pitwall/internal/adapters/ws"
	"github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	systemMetricsInterval = 10 * time.Second
	queueMetricsInterval  = 5 * time.Second
)

// optionsState holds the current display options string. The server can
// replace it at any time via the :OPT control line, so reads and writes
// come from different goroutines.
type optionsState struct {
	mu    sync.RWMutex
	value string
}

func (o *optionsState) get() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

func (o *optionsState) set(v string) {
	o.mu.Lock()
	o.value = v
	o.mu.Unlock()
}

func main() {
	// The default Go runtime collectors would shadow our own system
	// gauges on the shared registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get().Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log level, using info", logger.String("level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "fatal error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	opts := &optionsState{value: cfg.Options}

	var client *ws.Client
	svc := app.New(
		app.WithDisplay(display.NewLog()),
		app.WithMaxLeaders(cfg.MaxLeaders),
		app.WithTimezone(cfg.Timezone),
		app.WithOptionsSink(opts.set),
		app.WithReloadFunc(func() {
			if client != nil {
				client.Bounce()
			}
		}),
	)

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.FrameQueueSize))
	defer func() {
		_ = q.Close()
	}()
	metrics.UpdateQueueCapacity(cfg.FrameQueueSize)

	client = ws.New(cfg.ServerURL, q,
		ws.WithUserAgent(cfg.UserAgent),
		ws.WithOptionsProvider(opts.get),
		ws.WithConnectedHook(svc.SetConnected),
		ws.WithHeartbeatTimeout(time.Duration(cfg.HeartbeatTimeoutMS)*time.Millisecond),
		ws.WithReconnectDelay(time.Duration(cfg.ReconnectDelayMS)*time.Millisecond),
	)

	w := worker.New(q, svc)

	go func() {
		_ = client.Run(ctx)
	}()
	go w.Run(ctx)
	go startSystemMetricsUpdater(ctx)
	go startQueueMetricsUpdater(ctx, q, cfg.FrameQueueSize)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "http shutdown failed", logger.Error(err))
	}
	if err := w.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "worker shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "shutdown complete")
	return nil
}

// startSystemMetricsUpdater periodically refreshes the process-level
// gauges on the shared registry.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			if m.NumGC > 0 {
				avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / 1e6
				metrics.RecordSystemGCPauseTime(avgPauseMs)
			}
		}
	}
}

// startQueueMetricsUpdater samples the frame queue depth.
func startQueueMetricsUpdater(ctx context.Context, q *queue.InMemoryQueue, capacity int) {
	ticker := time.NewTicker(queueMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			size := q.Len(ctx)
			metrics.UpdateQueueSize(size)
			if capacity > 0 {
				metrics.UpdateQueueUtilization(float64(size) / float64(capacity) * 100)
			}
		}
	}
}
