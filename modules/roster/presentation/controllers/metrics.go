package controllers

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rosterAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of roster API requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	rosterAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roster",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for roster API requests.",
		Buckets: []float64{
			0.001, 0.005, 0.01, 0.05,
			0.1, 0.5, 1, 5, 30,
		},
	}, []string{"endpoint", "result"})
)

type statusRecordingResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecordingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecordingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecordingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecordingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func instrumentAPI(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecordingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		result := "2xx"
		switch {
		case rec.status >= 500:
			result = "5xx"
		case rec.status >= 400:
			result = "4xx"
		}

		rosterAPIRequests.WithLabelValues(endpoint, result).Inc()
		rosterAPILatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	}
}
