package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for the enhancement pipeline.
type Recorder struct {
	outcomes           *prometheus.CounterVec
	generationAttempts *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	inFlight           prometheus.Gauge
}

// New registers the collectors with reg and returns a Recorder.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentals_enhancement_outcomes_total",
				Help: "Total number of description enhancement calls by result",
			},
			[]string{"result"},
		),
		generationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentals_generation_attempts_total",
				Help: "Total number of backend generation attempts",
			},
			[]string{"backend", "result"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentals_generation_duration_seconds",
				Help:    "Duration of generation calls including retries",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"backend"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rentals_generation_in_flight",
				Help: "Number of generation calls currently holding a backend slot",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(r.outcomes, r.generationAttempts, r.generationDuration, r.inFlight)
	}
	return r
}

// Nop returns a Recorder whose collectors are not registered anywhere.
func Nop() *Recorder {
	return New(nil)
}

// Outcome counts one finished enhancement call.
func (r *Recorder) Outcome(result string) {
	r.outcomes.WithLabelValues(result).Inc()
}

// Attempt counts one backend call.
func (r *Recorder) Attempt(backend, result string) {
	r.generationAttempts.WithLabelValues(backend, result).Inc()
}

// ObserveGeneration records the wall time of a generation call.
func (r *Recorder) ObserveGeneration(backend string, d time.Duration) {
	r.generationDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// Acquired marks a backend slot as taken; the returned func releases it.
func (r *Recorder) Acquired() func() {
	r.inFlight.Inc()
	return r.inFlight.Dec
}
