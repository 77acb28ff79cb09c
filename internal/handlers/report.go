package handlers

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"salescope/internal/errors"
	"salescope/internal/observability"
	"salescope/internal/report"
	"salescope/internal/store"
)

type ReportHandlers struct {
	analyses store.AnalysisStore
	logger   *slog.Logger
}

func NewReportHandlers(analyses store.AnalysisStore, logger *slog.Logger) *ReportHandlers {
	return &ReportHandlers{
		analyses: analyses,
		logger:   logger,
	}
}

// HandleDownload renders the analysis as a PDF attachment.
func (h *ReportHandlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	userID := observability.GetUserID(r.Context())

	a, err := h.analyses.AnalysisByID(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			errors.WriteError(w, h.logger, errors.NotFound("Analysis not found"), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not load analysis"), requestID)
		return
	}

	// Rendered into memory first so a failure can still produce a clean
	// JSON error instead of a truncated download.
	var buf bytes.Buffer
	if err := report.Write(&buf, a); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not render report"), requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "analysis-"+a.ID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
