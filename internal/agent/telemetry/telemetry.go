package telemetry

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammad-safakhou/deepchat/config"
)

// Telemetry provides monitoring for agent runs, LLM calls, searches and
// sink forwards. A disabled instance records nothing but stays safe to
// call, so tests and one-shot CLI runs need no registry.
type Telemetry struct {
	enabled bool
	logger  *log.Logger

	routerRequests   *prometheus.CounterVec
	llmAttempts      *prometheus.CounterVec
	llmFailures      *prometheus.CounterVec
	searchRequests   *prometheus.CounterVec
	sinkForwards     *prometheus.CounterVec
	researchDuration prometheus.Histogram
}

// NewTelemetry creates a telemetry instance registered on reg. A nil
// registry or disabled config yields a no-op instance.
func NewTelemetry(cfg config.TelemetryConfig, reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		enabled: cfg.Enabled && reg != nil,
		logger:  log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
	}
	if !t.enabled {
		return t
	}

	t.routerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepchat_router_requests_total",
		Help: "Agent requests by routed path.",
	}, []string{"path"})
	t.llmAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepchat_llm_attempts_total",
		Help: "LLM completion attempts by model.",
	}, []string{"model"})
	t.llmFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepchat_llm_failures_total",
		Help: "Failed LLM completion attempts by model.",
	}, []string{"model"})
	t.searchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepchat_search_requests_total",
		Help: "Web search calls by provider and outcome.",
	}, []string{"provider", "outcome"})
	t.sinkForwards = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepchat_sink_forwards_total",
		Help: "Integration forwards by sink and outcome.",
	}, []string{"sink", "outcome"})
	t.researchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "deepchat_research_duration_seconds",
		Help:    "Wall time of deep research rounds.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	reg.MustRegister(t.routerRequests, t.llmAttempts, t.llmFailures, t.searchRequests, t.sinkForwards, t.researchDuration)
	return t
}

func (t *Telemetry) RecordRoute(path string) {
	if !t.enabled {
		return
	}
	t.routerRequests.WithLabelValues(path).Inc()
}

func (t *Telemetry) RecordLLMAttempt(model string, err error) {
	if !t.enabled {
		return
	}
	t.llmAttempts.WithLabelValues(model).Inc()
	if err != nil {
		t.llmFailures.WithLabelValues(model).Inc()
	}
}

func (t *Telemetry) RecordSearch(provider string, err error) {
	if !t.enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.searchRequests.WithLabelValues(provider, outcome).Inc()
}

func (t *Telemetry) RecordSinkForward(sink string, err error) {
	if !t.enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.sinkForwards.WithLabelValues(sink, outcome).Inc()
}

func (t *Telemetry) RecordResearch(d time.Duration) {
	if !t.enabled {
		return
	}
	t.researchDuration.Observe(d.Seconds())
}
