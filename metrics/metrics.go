package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prediction_league"

// Metrics собирает счётчики лиги в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	stageFetchFailures  *prometheus.CounterVec
	betsPlaced          *prometheus.CounterVec
	betsRejectedLocked  prometheus.Counter
	finalScoresRecorded prometheus.Counter
	cacheRequests       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stageFetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_fetch_failures_total",
			Help:      "Stage match fetches that failed during classification.",
		}, []string{"stage_id"}),
		betsPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_placed_total",
			Help:      "Accepted bets by operation (create or update).",
		}, []string{"op"}),
		betsRejectedLocked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_rejected_locked_total",
			Help:      "Bet writes rejected because the match had kicked off.",
		}),
		finalScoresRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "final_scores_recorded_total",
			Help:      "Matches that received a final score.",
		}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key and result.",
		}, []string{"key", "result"}),
	}
}

func (m *Metrics) StageFetchFailed(stageID int) {
	m.stageFetchFailures.WithLabelValues(strconv.Itoa(stageID)).Inc()
}

func (m *Metrics) BetPlaced(created bool) {
	op := "update"
	if created {
		op = "create"
	}
	m.betsPlaced.WithLabelValues(op).Inc()
}

func (m *Metrics) BetRejectedLocked() {
	m.betsRejectedLocked.Inc()
}

func (m *Metrics) FinalScoreRecorded() {
	m.finalScoresRecorded.Inc()
}

func (m *Metrics) CacheRequest(key, result string) {
	m.cacheRequests.WithLabelValues(key, result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
