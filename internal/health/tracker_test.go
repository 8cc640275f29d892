package health_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/edge-proxy/internal/backend"
	"github.com/angeloszaimis/edge-proxy/internal/health"
)

var _ = Describe("Tracker", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	})

	Describe("IsHealthy", func() {
		It("reports healthy when no failure is recorded", func() {
			tracker := health.NewTracker(true, time.Minute, log)
			Expect(tracker.IsHealthy("http://a:8081")).To(BeTrue())
		})

		It("reports unhealthy immediately after MarkUnhealthy", func() {
			tracker := health.NewTracker(true, time.Minute, log)
			tracker.MarkUnhealthy("http://a:8081")
			Expect(tracker.IsHealthy("http://a:8081")).To(BeFalse())
		})

		It("recovers once the window has elapsed", func() {
			tracker := health.NewTracker(true, 50*time.Millisecond, log)
			tracker.MarkUnhealthy("http://a:8081")
			Expect(tracker.IsHealthy("http://a:8081")).To(BeFalse())

			Eventually(func() bool {
				return tracker.IsHealthy("http://a:8081")
			}, "500ms", "10ms").Should(BeTrue())
		})

		It("always reports healthy when checking is disabled", func() {
			tracker := health.NewTracker(false, time.Minute, log)
			tracker.MarkUnhealthy("http://a:8081")
			Expect(tracker.IsHealthy("http://a:8081")).To(BeTrue())
		})

		It("reports healthy again after MarkHealthy", func() {
			tracker := health.NewTracker(true, time.Minute, log)
			tracker.MarkUnhealthy("http://a:8081")
			tracker.MarkHealthy("http://a:8081")
			Expect(tracker.IsHealthy("http://a:8081")).To(BeTrue())
		})
	})

	Describe("HealthyBackends", func() {
		It("preserves configured order and drops unhealthy entries", func() {
			tracker := health.NewTracker(true, time.Minute, log)

			backends := makeBackends("http://a:1", "http://b:2", "http://c:3")
			tracker.MarkUnhealthy("http://b:2")

			healthy := tracker.HealthyBackends(backends)
			Expect(healthy).To(HaveLen(2))
			Expect(healthy[0].Base()).To(Equal("http://a:1"))
			Expect(healthy[1].Base()).To(Equal("http://c:3"))
		})
	})

	Describe("Status", func() {
		It("returns a verdict per backend", func() {
			tracker := health.NewTracker(true, time.Minute, log)

			backends := makeBackends("http://a:1", "http://b:2")
			tracker.MarkUnhealthy("http://b:2")

			status := tracker.Status(backends)
			Expect(status).To(Equal(map[string]bool{
				"http://a:1": true,
				"http://b:2": false,
			}))
		})
	})

	Describe("Check", func() {
		It("marks a responsive backend healthy", func() {
			origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/health" {
					w.WriteHeader(http.StatusOK)
				}
			}))
			defer origin.Close()

			tracker := health.NewTracker(true, time.Minute, log)
			b := mustBackend(origin.URL)

			tracker.MarkUnhealthy(b.Base())
			Expect(tracker.Check(context.Background(), b)).To(BeTrue())
			Expect(tracker.IsHealthy(b.Base())).To(BeTrue())
		})

		It("marks a failing backend unhealthy", func() {
			origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer origin.Close()

			tracker := health.NewTracker(true, time.Minute, log)
			b := mustBackend(origin.URL)

			Expect(tracker.Check(context.Background(), b)).To(BeFalse())
			Expect(tracker.IsHealthy(b.Base())).To(BeFalse())
		})

		It("marks an unreachable backend unhealthy", func() {
			tracker := health.NewTracker(true, time.Minute, log)
			b := mustBackend("http://127.0.0.1:1")

			Expect(tracker.Check(context.Background(), b)).To(BeFalse())
			Expect(tracker.IsHealthy(b.Base())).To(BeFalse())
		})

		It("succeeds without probing when checking is disabled", func() {
			tracker := health.NewTracker(false, time.Minute, log)
			b := mustBackend("http://127.0.0.1:1")

			Expect(tracker.Check(context.Background(), b)).To(BeTrue())
		})
	})
})

func makeBackends(urls ...string) []*backend.Backend {
	backends := make([]*backend.Backend, 0, len(urls))
	for _, u := range urls {
		backends = append(backends, mustBackend(u))
	}
	return backends
}

func mustBackend(rawURL string) *backend.Backend {
	b, err := backend.New(rawURL, 1)
	if err != nil {
		panic(err)
	}
	return b
}
