package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resonance_fetch_runs_total",
		Help: "Total snapshot fetch runs",
	})
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resonance_fetch_errors_total",
		Help: "Total snapshot fetch errors",
	})
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resonance_fetch_duration_seconds",
		Help:    "Snapshot fetch duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_api_retries_total",
		Help: "Total content API retry attempts",
	}, []string{"feed"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_command_runs_total",
		Help: "Total command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_command_errors_total",
		Help: "Total command failures",
	}, []string{"command"})
	FallbackSelections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resonance_recommend_fallback_total",
		Help: "Recommendations served from the popularity fallback",
	})
)

func init() {
	prometheus.MustRegister(FetchRuns, FetchErrors, FetchDuration, APIRetries, CommandRuns, CommandErrors, FallbackSelections)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveFetchDuration records a run duration.
func ObserveFetchDuration(start time.Time) {
	FetchDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for a feed.
func IncAPIRetry(feed string) { APIRetries.WithLabelValues(feed).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
