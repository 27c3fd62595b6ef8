package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "churn",
			Name:      "predictions_total",
			Help:      "Total number of predictions served, by label.",
		},
		[]string{"label", "scaled"},
	)

	validationFailuresCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "churn",
			Name:      "validation_failures_total",
			Help:      "Total number of prediction requests rejected by input validation.",
		},
	)

	inferenceErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "churn",
			Name:      "inference_errors_total",
			Help:      "Total number of predictions that failed inside the scaler or classifier.",
		},
	)

	predictionDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "churn",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of the feature vector, scaling and classification pipeline.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	sideEffectFailuresCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "churn",
			Name:      "side_effect_failures_total",
			Help:      "Total number of failed audit writes and event publishes.",
		},
		[]string{"kind"}, // "audit" or "event"
	)
)
