package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording feed metrics", func() {
			Convey("Then it should record received frames", func() {
				So(func() {
					RecordFrameReceived()
					RecordFrameReceived()
					RecordFrameReceived()
				}, ShouldNotPanic)
			})

			Convey("And it should record decoded frames by tag", func() {
				So(func() {
					RecordFrameDecoded("$G")
					RecordFrameDecoded("$H")
					RecordFrameDecoded("$F")
				}, ShouldNotPanic)
			})

			Convey("And it should record decode errors", func() {
				So(func() {
					RecordDecodeError()
					RecordDecodeError()
				}, ShouldNotPanic)
			})

			Convey("And it should record probe replies", func() {
				So(func() {
					RecordProbeReply()
				}, ShouldNotPanic)
			})

			Convey("And it should record dispatch latency", func() {
				So(func() {
					RecordDispatchLatency(0.5)
					RecordDispatchLatency(1.5)
					RecordDispatchLatency(10.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording connection metrics", func() {
			Convey("Then it should update connection state", func() {
				So(func() {
					UpdateConnectionState(true)
					UpdateConnectionState(false)
				}, ShouldNotPanic)
			})

			Convey("And it should record lifecycle events", func() {
				So(func() {
					RecordHandshake()
					RecordReconnect()
					RecordHeartbeatTimeout()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording session metrics", func() {
			Convey("Then it should record mode swaps", func() {
				So(func() {
					RecordModeSwap(true)
					RecordModeSwap(false)
				}, ShouldNotPanic)
			})

			Convey("And it should record session resets", func() {
				So(func() {
					RecordSessionReset()
				}, ShouldNotPanic)
			})

			Convey("And it should record leaderboard recomputes", func() {
				So(func() {
					RecordLeaderboardRecompute("race")
					RecordLeaderboardRecompute("qualifying")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update gauges", func() {
				So(func() {
					UpdateQueueSize(1000)
					UpdateQueueCapacity(4096)
					UpdateQueueUtilization(0.25)
				}, ShouldNotPanic)
			})

			Convey("And it should record enqueue and dequeue activity", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError("queue_full")
					RecordQueueEnqueueError("closed")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("/snapshot", "GET", "200")
					RecordHTTPRequestDuration("/snapshot", "GET", "200", 12.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record detailed errors", func() {
				So(func() {
					RecordErrorByComponent("codec", "malformed")
					RecordErrorByType("malformed", "warning")
					RecordErrorByEndpoint("/snapshot", "GET", "server_error")
					RecordErrorLatency("http", "server_error", 3.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should update system gauges", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(42)
					RecordSystemGCPauseTime(0.8)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the metrics registry", t, func() {
		Convey("When retrieving the global registry", func() {
			registry := GetRegistry()

			Convey("Then it should expose the registered metrics", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
