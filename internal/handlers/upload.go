package handlers

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"salescope/internal/analysis"
	"salescope/internal/config"
	"salescope/internal/errors"
	"salescope/internal/ingest"
	"salescope/internal/models"
	"salescope/internal/observability"
	"salescope/internal/store"
)

type UploadHandlers struct {
	analyses store.AnalysisStore
	cfg      config.UploadConfig
	logger   *slog.Logger
}

func NewUploadHandlers(analyses store.AnalysisStore, cfg config.UploadConfig, logger *slog.Logger) *UploadHandlers {
	return &UploadHandlers{
		analyses: analyses,
		cfg:      cfg,
		logger:   logger,
	}
}

// HandleUpload ingests a spreadsheet, infers column roles, computes the
// metrics and persists the result for the signed-in user.
func (h *UploadHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	userID := observability.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxBytes); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Upload too large or malformed"), requestID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequest("A file field named 'file' is required"), requestID)
		return
	}
	defer file.Close()

	if !ingest.Supported(header.Filename) {
		errors.WriteError(w, h.logger,
			errors.UnsupportedFormat(fmt.Sprintf("Unsupported file type %q; use .csv, .tsv or .xlsx", filepath.Ext(header.Filename))),
			requestID)
		return
	}

	path, err := h.spool(file, header.Filename)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not store upload"), requestID)
		return
	}
	defer os.Remove(path)

	ds, err := ingest.ReadFile(r.Context(), path)
	if err != nil {
		errors.WriteError(w, h.logger, mapIngestError(err), requestID)
		return
	}

	roles := analysis.InferColumns(ds.Columns)
	metrics, err := analysis.Compute(ds, roles, time.Now().UTC())
	if err != nil {
		errors.WriteError(w, h.logger, mapAnalysisError(err), requestID)
		return
	}

	record := &models.Analysis{
		UserID:   userID,
		Filename: header.Filename,
		Columns:  roles,
		Metrics:  *metrics,
	}
	if err := h.analyses.SaveAnalysis(r.Context(), record); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Could not save analysis"), requestID)
		return
	}

	h.logger.Info("analysis created",
		"analysis_id", record.ID,
		"user_id", userID,
		"filename", record.Filename,
		"rows", metrics.TotalRecords,
		"request_id", requestID,
	)

	http.Redirect(w, r, "/analyses/"+record.ID, http.StatusSeeOther)
}

// spool writes the upload to a uniquely named file so the format readers
// can seek and so xlsx archives open from disk.
func (h *UploadHandlers) spool(src io.Reader, filename string) (string, error) {
	path := filepath.Join(h.cfg.Dir, uuid.NewString()+filepath.Ext(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	return path, nil
}

func mapIngestError(err error) error {
	switch {
	case stderrors.Is(err, ingest.ErrUnsupportedFormat):
		return errors.UnsupportedFormat("Unsupported file type; use .csv, .tsv or .xlsx")
	case stderrors.Is(err, ingest.ErrEmptyFile), stderrors.Is(err, ingest.ErrNoHeader):
		return errors.BadRequestWrap(err, "The file has no usable header row")
	default:
		return errors.InternalWrap(err, "Could not read the file")
	}
}

func mapAnalysisError(err error) error {
	switch {
	case stderrors.Is(err, analysis.ErrMissingRequiredColumns):
		return errors.MissingColumns("Could not find a date and an amount column; rename your columns and try again")
	case stderrors.Is(err, analysis.ErrUnparseableDates):
		return errors.NoValidRows("No row had a recognizable date value")
	case stderrors.Is(err, analysis.ErrNoValidRows):
		return errors.NoValidRows("No row had both a valid date and a numeric amount")
	default:
		return errors.InternalWrap(err, "Could not analyze the file")
	}
}
