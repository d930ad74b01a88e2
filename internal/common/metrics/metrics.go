// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ifc_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ifc_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	ModelsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ifc_models_loaded",
			Help: "Number of models resident in the store",
		},
	)

	ModelParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ifc_model_parse_duration_seconds",
			Help:    "Duration of IFC parsing in seconds",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ifc_upload_bytes",
			Help:    "Size of accepted IFC uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	QuantitiesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_quantities_dropped_total",
			Help: "Quantities omitted from element views because no unit could be inferred",
		},
		[]string{"ifc_type"},
	)

	PropertyDerivationDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ifc_property_derivation_degraded_total",
			Help: "Element views served with an emptied block after a traversal failure",
		},
		[]string{"kind"},
	)
)
