package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"salescope/internal/errors"
	"salescope/internal/models"
	"salescope/internal/observability"
	"salescope/internal/store"
)

const defaultHistoryLimit = 20

type APIHandlers struct {
	store  store.Store
	logger *slog.Logger
}

func NewAPIHandlers(st store.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  st,
		logger: logger,
	}
}

func (h *APIHandlers) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	userID := observability.GetUserID(r.Context())

	a, err := h.store.AnalysisByID(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.WriteError(w, h.logger, errors.NotFound("Analysis not found"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not load analysis"), requestID)
		return
	}

	errors.WriteSuccess(w, a)
}

func (h *APIHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	userID := observability.GetUserID(r.Context())

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			errors.WriteError(w, h.logger, errors.Validation("limit must be between 1 and 100"), requestID)
			return
		}
		limit = parsed
	}

	list, err := h.store.AnalysesByUser(r.Context(), userID, limit)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not load history"), requestID)
		return
	}
	if list == nil {
		list = []*models.Analysis{}
	}

	errors.WriteSuccess(w, list)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	if err := h.store.Ping(r.Context()); err != nil {
		errors.WriteError(w, h.logger, errors.ServiceUnavailable("Database unreachable"), requestID)
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	userID := observability.GetUserID(r.Context())

	list, err := h.store.AnalysesByUser(r.Context(), userID, 100)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not load stats"), requestID)
		return
	}

	stats := map[string]any{
		"analyses": len(list),
	}
	if len(list) > 0 {
		stats["latest"] = list[0].CreatedAt.Format(time.RFC3339)
		stats["latest_file"] = list[0].Filename
	}

	errors.WriteSuccess(w, stats)
}
