package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuestionsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptive_questions_served_total",
			Help: "Questions served, by selection strategy",
		},
		[]string{"strategy"},
	)

	AnswersRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptive_answers_recorded_total",
			Help: "Answers recorded, by correctness",
		},
		[]string{"correct"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adaptive_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// Handler exposes the prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Observe records request latency middleware-style.
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(RequestDuration.WithLabelValues(c.FullPath(), c.Request.Method))
		c.Next()
		timer.ObserveDuration()
	}
}
