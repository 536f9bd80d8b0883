package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kikitorin"

// PrometheusRecorder registers and updates the session counters on the
// default registry.
type PrometheusRecorder struct {
	connectAttempts prometheus.Counter
	connects        prometheus.Counter
	framesSent      prometheus.Counter
	audioBytesSent  prometheus.Counter
	framesDropped   prometheus.Counter
	resultsMerged   prometheus.Counter
	failures        *prometheus.CounterVec
}

func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		connectAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Total number of websocket dial attempts",
		}),
		connects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Total number of successfully established connections",
		}),
		framesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_sent_total",
			Help:      "Total number of audio frames written to the stream",
		}),
		audioBytesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_sent_total",
			Help:      "Total audio bytes written to the stream",
		}),
		framesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_dropped_total",
			Help:      "Total number of audio frames dropped before sending",
		}),
		resultsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_merged_total",
			Help:      "Total number of result segments merged into transcripts",
		}),
		failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of session failures",
		}, []string{"kind"}),
	}
}

func (r *PrometheusRecorder) ConnectAttempt() {
	r.connectAttempts.Inc()
}

func (r *PrometheusRecorder) Connected() {
	r.connects.Inc()
}

func (r *PrometheusRecorder) FrameSent(bytes int) {
	r.framesSent.Inc()
	r.audioBytesSent.Add(float64(bytes))
}

func (r *PrometheusRecorder) FrameDropped() {
	r.framesDropped.Inc()
}

func (r *PrometheusRecorder) ResultsMerged(count int) {
	r.resultsMerged.Add(float64(count))
}

func (r *PrometheusRecorder) Failure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

// ListenAndServe exposes /metrics on addr. It blocks, so callers run it
// in a goroutine.
func ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
