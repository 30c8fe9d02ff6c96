package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/pitwall/internal/adapters/http/api"
	"github.com/okian/pitwall/internal/adapters/mq/queue"
	app "github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestConfigurationLoading(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("PITWALL_ADDR", ":8080")
		_ = os.Setenv("PITWALL_QUEUE_SIZE", "1000")
		_ = os.Setenv("PITWALL_MAX_LEADERS", "5")
		defer func() {
			_ = os.Unsetenv("PITWALL_ADDR")
			_ = os.Unsetenv("PITWALL_QUEUE_SIZE")
			_ = os.Unsetenv("PITWALL_MAX_LEADERS")
		}()

		convey.Convey("Then configuration should be loadable", func() {
			ctx := context.Background()
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg, convey.ShouldNotBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.FrameQueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.MaxLeaders, convey.ShouldEqual, 5)
		})
	})
}

func TestOptionsState(t *testing.T) {
	convey.Convey("Given an options state", t, func() {
		opts := &optionsState{value: "initial"}

		convey.Convey("When read before any update", func() {
			convey.So(opts.get(), convey.ShouldEqual, "initial")
		})

		convey.Convey("When the server pushes a replacement", func() {
			opts.set("classonly")
			convey.So(opts.get(), convey.ShouldEqual, "classonly")
		})

		convey.Convey("When cleared", func() {
			opts.set("")
			convey.So(opts.get(), convey.ShouldEqual, "")
		})
	})
}

func TestHTTPWiring(t *testing.T) {
	convey.Convey("Given a service registered on a mux", t, func() {
		ctx := context.Background()
		svc := app.New()
		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)

		convey.Convey("Then the snapshot endpoint responds", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the health endpoint responds", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestQueueMetricsUpdater(t *testing.T) {
	convey.Convey("Given a queue metrics updater", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		defer func() {
			_ = q.Close()
		}()

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then it returns promptly", func() {
				done := make(chan struct{})
				go func() {
					startQueueMetricsUpdater(ctx, q, 8)
					close(done)
				}()
				<-done
				convey.So(true, convey.ShouldBeTrue)
			})
		})
	})
}
