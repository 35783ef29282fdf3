package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coach_sessions_active",
		Help: "Currently open coaching sessions",
	})

	SamplerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_sampler_ticks_total",
		Help: "Sampler ticks fired",
	})

	SamplerSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_sampler_skipped_total",
		Help: "Ticks that did not produce a counted frame, by reason",
	}, []string{"reason"})

	FramesClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_frames_classified_total",
		Help: "Frames classified and counted by the sampler",
	})

	SessionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_sampler_finalized_total",
		Help: "Sampling sessions finalized, by the source state that ended them",
	}, []string{"reason"})

	DetectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coach_detection_duration_seconds",
		Help:    "Landmark detection latency",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
	})

	FeedbackSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_feedback_source_total",
		Help: "Feedback results served, by source",
	}, []string{"source", "modality"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_provider_errors_total",
		Help: "AI feedback provider failures, by reason",
	}, []string{"reason"})

	ProviderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coach_provider_duration_seconds",
		Help:    "AI feedback provider latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 15.0},
	})
)
