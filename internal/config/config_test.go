package config_test

import (
	"context"
	"testing"

	"github.com/okian/pitwall/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ServerURL, convey.ShouldEqual, "ws://127.0.0.1:50000/stream")
			convey.So(cfg.UserAgent, convey.ShouldEqual, "pitwall")
			convey.So(cfg.FrameQueueSize, convey.ShouldEqual, 4096)
			convey.So(cfg.MaxLeaders, convey.ShouldEqual, 3)
			convey.So(cfg.HeartbeatTimeoutMS, convey.ShouldEqual, 3000)
			convey.So(cfg.ReconnectDelayMS, convey.ShouldEqual, 3000)
		})
	})
}
