package engine

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	episodesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtguard_episodes_opened_total",
		Help: "Low-battery episodes opened across all calls",
	})
	episodesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtguard_episodes_resolved_total",
		Help: "Episode resolutions, partitioned by outcome",
	}, []string{"outcome"})
	alertsPresented = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtguard_alerts_presented_total",
		Help: "Confirmation dialogs presented, partitioned by variant",
	}, []string{"variant"})
	alertsDismissed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtguard_alerts_dismissed_total",
		Help: "Dialogs torn down externally before the user responded",
	})
	outgoingPreempted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtguard_preempted_outgoing_total",
		Help: "Pending outgoing low-battery video calls disconnected by a new incoming call",
	})
)

// ServeMetrics exposes the Prometheus registry on addr. It blocks, so run it
// on its own goroutine.
func ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("vtguard: metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("vtguard: metrics server: %v", err)
	}
}
