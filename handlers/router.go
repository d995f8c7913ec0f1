package handlers

import (
	"net/http"

	"pricewise/middleware"

	"github.com/gorilla/mux"
)

// NewRouter registers every route on a gorilla router with the global
// middleware applied. rateLimit is requests per second per client.
func NewRouter(h *Handlers, rateLimit float64) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(rateLimit))

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.GetMetrics).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	apiV1.HandleFunc("/compare-prices", h.ComparePrices).Methods(http.MethodGet)
	apiV1.HandleFunc("/compare-prices/async", h.ComparePricesAsync).Methods(http.MethodPost)
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods(http.MethodGet)
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods(http.MethodGet)
	apiV1.HandleFunc("/price-history", h.GetPriceHistory).Methods(http.MethodGet)
	apiV1.HandleFunc("/predict-price", h.PredictPrice).Methods(http.MethodGet)
	apiV1.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	apiV1.HandleFunc("/predictions", h.GetPredictions).Methods(http.MethodGet)

	// Legacy API routes (redirect to v1)
	legacyAPI := r.PathPrefix("/api").Subrouter()
	legacyAPI.HandleFunc("/health", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/compare-prices", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/price-history", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/predict-price", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/products", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/predictions", redirectToV1).Methods(http.MethodGet)
	legacyAPI.HandleFunc("/tasks/{taskId}", redirectToV1).Methods(http.MethodGet)

	return r
}
