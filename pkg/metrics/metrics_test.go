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
		Convey("When recording result lifecycle metrics", func() {
			Convey("Then it should record submissions", func() {
				So(func() {
					RecordResultSubmitted()
					RecordResultSubmitted()
					RecordResultSubmitted()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate submissions", func() {
				So(func() {
					RecordResultDuplicate()
					RecordResultDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record verification decisions", func() {
				So(func() {
					RecordVerification("verified")
					RecordVerification("invalid")
				}, ShouldNotPanic)
			})

			Convey("And it should record disputes and archivals", func() {
				So(func() {
					RecordDispute()
					RecordArchival()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording recompute metrics", func() {
			Convey("Then it should record recomputations", func() {
				So(func() {
					RecordRecompute()
					RecordRecomputeDuration(12.5)
					RecordRecomputeConflict()
					RecordRecomputeError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording leaderboard metrics", func() {
			Convey("Then it should record partition builds", func() {
				So(func() {
					RecordLeaderboardBuild()
					RecordLeaderboardBuildDuration(25.0)
					RecordLeaderboardError()
					UpdateRankedPlayers("overall|all_time", 1500)
					UpdateSnapshotLastUnix(time.Now().Unix())
				}, ShouldNotPanic)
			})

			Convey("And it should record snapshot cache outcomes", func() {
				So(func() {
					RecordSnapshotCacheHit()
					RecordSnapshotCacheMiss()
					RecordSnapshotServedStale()
					RecordSnapshotMirrorPublish()
					RecordSnapshotMirrorError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording refresh metrics", func() {
			Convey("Then it should track the queue and workers", func() {
				So(func() {
					UpdateRefreshQueueDepth(3)
					UpdateRefreshQueueCapacity(256)
					RecordRefreshEnqueued()
					RecordRefreshCoalesced()
					RecordRefreshDropped()
					UpdateRefreshWorkerActive(2)
					RecordRefreshLatency(40.0)
					RecordRefreshError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording store metrics", func() {
			Convey("Then it should record latencies and errors", func() {
				So(func() {
					RecordStoreQueryLatency(2.0)
					RecordStoreQueryLatency(5.0)
					RecordStoreExecLatency(8.0)
					RecordStoreError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/healthz", "GET", "200")
					RecordHTTPRequest("/results", "POST", "201")
					RecordHTTPRequest("/leaderboard", "GET", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/healthz", "GET", "200", 5.0)
					RecordHTTPRequestDuration("/results", "POST", "201", 10.0)
					RecordHTTPRequestDuration("/leaderboard", "GET", "200", 15.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("store", "timeout")
					RecordErrorByComponent("snapshot", "build_failed")
					RecordErrorByComponent("refresh", "queue_full")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by type", func() {
				So(func() {
					RecordErrorByType("timeout", "error")
					RecordErrorByType("validation_error", "warning")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by endpoint", func() {
				So(func() {
					RecordErrorByEndpoint("/results", "POST", "validation_error")
					RecordErrorByEndpoint("/leaderboard", "GET", "not_found")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateRefreshQueueDepth(0)
					UpdateRefreshWorkerActive(0)
					UpdateRankedPlayers("overall|daily", 0)
					RecordRecomputeDuration(0.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateRefreshQueueDepth(-100)
					UpdateRefreshWorkerActive(-10)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					UpdateRefreshQueueDepth(1000000)
					UpdateRankedPlayers("overall|all_time", 10000000)
					RecordRecomputeDuration(10000.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 30000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings", func() {
				So(func() {
					RecordHTTPRequest("", "", "200")
					RecordHTTPRequestDuration("", "", "200", 10.0)
					RecordErrorByComponent("", "")
					RecordErrorByType("", "")
					RecordErrorByEndpoint("", "", "")
					RecordVerification("")
				}, ShouldNotPanic)
			})

			Convey("And using special characters in labels", func() {
				So(func() {
					RecordHTTPRequest("/leaderboard?category=skill&period=weekly", "GET", "200")
					RecordErrorByComponent("component-with-dash", "error_with_underscore")
					RecordErrorByType("error.with.dots", "error")
					UpdateRankedPlayers("location:loc-7|monthly", 42)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			// Start multiple goroutines recording metrics
			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordResultSubmitted()
						UpdateRefreshQueueDepth(j)
						RecordRecomputeDuration(float64(j))
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue) // If we get here, no panics occurred
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given metrics options validation", t, func() {
		Convey("When creating with empty namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil custom labels", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithCustomLabels(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with zero refresh interval", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRefreshInterval(0), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}
