package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pricewise/models"
	"pricewise/scheduler"
	"pricewise/services"

	"github.com/gorilla/mux"
)

const estimatedNote = "Using estimated prices due to scraping issues"

type Handlers struct {
	comparisons *services.ComparisonService
	forecasts   *services.ForecastService
	products    *services.ProductService
	taskManager *scheduler.TaskManager

	defaultDaysAhead int
	requestTimeout   time.Duration
	started          time.Time
}

// Deps are the services the HTTP layer dispatches to
type Deps struct {
	Comparisons      *services.ComparisonService
	Forecasts        *services.ForecastService
	Products         *services.ProductService
	TaskManager      *scheduler.TaskManager
	DefaultDaysAhead int
	RequestTimeout   time.Duration
}

func NewHandlers(deps Deps) *Handlers {
	if deps.DefaultDaysAhead <= 0 {
		deps.DefaultDaysAhead = 30
	}
	return &Handlers{
		comparisons:      deps.Comparisons,
		forecasts:        deps.Forecasts,
		products:         deps.Products,
		taskManager:      deps.TaskManager,
		defaultDaysAhead: deps.DefaultDaysAhead,
		requestTimeout:   deps.RequestTimeout,
		started:          time.Now(),
	}
}

// Close stops background task processing
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"message":     "API is running successfully",
		"timestamp":   time.Now(),
		"service":     "pricewise",
		"api_version": "v1",
	})
}

// ComparePrices searches every site for product_name. When product_id names
// a known product the scraped prices are also stored against it.
func (h *Handlers) ComparePrices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("product_name")

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	comparison, err := h.comparisons.Compare(ctx, name)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "product_name is required")
			return
		}
		slog.Error("comparison failed", "query", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compare prices")
		return
	}

	if raw := r.URL.Query().Get("product_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			if _, err := h.comparisons.Record(ctx, id, comparison.Results); err != nil {
				slog.Warn("failed to record comparison", "product_id", id, "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, comparisonResponse(comparison))
}

func comparisonResponse(c *models.Comparison) map[string]interface{} {
	resp := map[string]interface{}{
		"status":     "success",
		"product":    c.Query,
		"comparison": c.Results,
		"cheapest":   c.Cheapest,
	}
	if c.Results.Estimated() {
		resp["note"] = estimatedNote
	}
	return resp
}

// ComparePricesAsync queues a comparison and returns a task ID
func (h *Handlers) ComparePricesAsync(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("product_name"))
	if name == "" && r.Body != nil {
		var req struct {
			ProductName string `json:"product_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			name = strings.TrimSpace(req.ProductName)
		}
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "product_name is required")
		return
	}

	task := h.taskManager.SubmitTask(name)
	slog.Info("async comparison queued", "query", name, "task_id", task.ID)

	snap := task.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"task_id": snap.ID,
		"status":  snap.Status,
		"message": snap.Message,
		"product": name,
	})
}

// GetTaskStatus returns the status of an async task
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["taskId"]

	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task.Snapshot())
}

// GetTaskStats returns statistics about the task manager
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     h.taskManager.GetStats(),
		"timestamp": time.Now(),
	})
}

// GetPriceHistory returns every stored price for a product, newest first
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	history, err := h.products.History(r.Context(), id)
	if err != nil {
		slog.Error("failed to get price history", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No price history found for product %d", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"product_id":    id,
		"total_records": len(history),
		"prices":        history,
	})
}

// PredictPrice forecasts a product's price days_ahead days past its latest
// observation and stores the prediction
func (h *Handlers) PredictPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	days := h.defaultDaysAhead
	if raw := r.URL.Query().Get("days_ahead"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days_ahead")
			return
		}
		days = d
	}

	result, err := h.forecasts.Forecast(r.Context(), id, days)
	switch {
	case errors.Is(err, services.ErrInsufficientHistory):
		writeError(w, http.StatusBadRequest, "Not enough historical data to make prediction")
		return
	case errors.Is(err, services.ErrInvalidHorizon):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("forecast failed", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to predict price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "success",
		"product_id":       id,
		"prediction":       result.Prediction,
		"model_evaluation": result.Evaluation,
		"coefficients":     result.Coefficients,
	})
}

// ListProducts returns all products, or those fuzzily matching q
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"total_products": len(products),
		"products":       products,
	})
}

// GetPredictions returns previously saved predictions for a product
func (h *Handlers) GetPredictions(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	predictions, err := h.forecasts.Predictions(r.Context(), id)
	if err != nil {
		slog.Error("failed to get predictions", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get predictions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "success",
		"product_id":        id,
		"total_predictions": len(predictions),
		"predictions":       predictions,
	})
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("product_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return 0, false
	}
	return id, true
}

// redirectToV1 redirects legacy API calls to v1 endpoints
func redirectToV1(w http.ResponseWriter, r *http.Request) {
	newPath := "/api/v1" + strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		newPath += "?" + r.URL.RawQuery
	}

	w.Header().Set("X-API-Deprecation-Warning", "This endpoint is deprecated. Please use /api/v1 endpoints instead.")
	w.Header().Set("X-API-Version", "v1")

	http.Redirect(w, r, newPath, http.StatusMovedPermanently)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
