package metrics

import (
	"net/http"

	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the service's custom Prometheus metrics.
type Manager struct {
	Registry                  *prometheus.Registry
	RatingsSubmittedTotal     prometheus.Counter
	FriendshipsAddedTotal     prometheus.Counter
	FriendshipsRemovedTotal   prometheus.Counter
	RecommendationsTotal      prometheus.Counter
	ProfessionalsCreatedTotal prometheus.Counter
	APIErrorsTotal            *prometheus.CounterVec
	APILatency                *prometheus.HistogramVec
}

// NewManager initializes and registers the custom metrics on a dedicated
// registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	ratingsSubmittedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "ratings_submitted_total",
		Help:      "Total number of ratings submitted (created or overwritten).",
	})
	friendshipsAddedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "friendships_added_total",
		Help:      "Total number of friendships created.",
	})
	friendshipsRemovedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "friendships_removed_total",
		Help:      "Total number of friendships removed.",
	})
	recommendationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "recommendations_total",
		Help:      "Total number of professional recommendations added.",
	})
	professionalsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "professionals_created_total",
		Help:      "Total number of professionals registered.",
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route.",
	}, []string{"route", "error_type"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		ratingsSubmittedTotal,
		friendshipsAddedTotal,
		friendshipsRemovedTotal,
		recommendationsTotal,
		professionalsCreatedTotal,
		apiErrorsTotal,
		apiLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:                  registry,
		RatingsSubmittedTotal:     ratingsSubmittedTotal,
		FriendshipsAddedTotal:     friendshipsAddedTotal,
		FriendshipsRemovedTotal:   friendshipsRemovedTotal,
		RecommendationsTotal:      recommendationsTotal,
		ProfessionalsCreatedTotal: professionalsCreatedTotal,
		APIErrorsTotal:            apiErrorsTotal,
		APILatency:                apiLatency,
	}
}

// StartServer starts an HTTP server exposing the registry on /metrics.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
