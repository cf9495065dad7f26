// Package metrics defines the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quiz_api"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	submissions      prometheus.Counter
	submissionScores prometheus.Histogram
	quizzesCreated   prometheus.Counter
	questionCache    *prometheus.CounterVec
	orphansDeleted   prometheus.Counter
	leaderboardPush  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. When reg is also a Gatherer (as
// *prometheus.Registry is) Handler serves from it.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Graded quiz submissions.",
		}),
		submissionScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_submission_score",
			Help:      "Distribution of submission scores (0-100).",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		quizzesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_created_total",
			Help:      "Quizzes created with their questions.",
		}),
		questionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_cache_lookups_total",
			Help:      "Question-set cache lookups by result.",
		}, []string{"result"}),
		orphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_quizzes_deleted_total",
			Help:      "Question-less quizzes removed by the sweeper.",
		}),
		leaderboardPush: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_updates_total",
			Help:      "Leaderboard updates by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.submissions,
		m.submissionScores,
		m.quizzesCreated,
		m.questionCache,
		m.orphansDeleted,
		m.leaderboardPush,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSubmission(score float64) {
	if m == nil {
		return
	}
	m.submissions.Inc()
	m.submissionScores.Observe(score)
}

func (m *Metrics) QuizCreated() {
	if m == nil {
		return
	}
	m.quizzesCreated.Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.questionCache.WithLabelValues(result).Inc()
}

func (m *Metrics) OrphansDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.orphansDeleted.Add(float64(n))
}

// LeaderboardUpdate counts a leaderboard write; ok=false marks a failure.
func (m *Metrics) LeaderboardUpdate(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.leaderboardPush.WithLabelValues(outcome).Inc()
}
