package handler

import (
	"context"
	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/batch"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ReconciliationRunner starts background reconciliation runs and reports on them.
type ReconciliationRunner interface {
	Start(ctx context.Context, trigger string) (*batch.Run, error)
	Get(ctx context.Context, runID string) (*batch.Run, error)
}

type IngestHandler struct {
	runner ReconciliationRunner
	logger *slog.Logger
}

func NewIngestHandler(runner ReconciliationRunner, l *slog.Logger) *IngestHandler {
	if runner == nil {
		panic("reconciliation runner cannot be nil")
	}
	return &IngestHandler{
		runner: runner,
		logger: l.With("component", "IngestHandler"),
	}
}

// StartIngest handles POST /ingest-data
//
// @Summary Start a reconciliation run
// @Description Reads the configured customer and loan files in the background and upserts every row.
// @Tags Ingest
// @Produce json
// @Success 202 {object} dto.IngestStartedResponse "Run started"
// @Failure 503 {object} dto.ErrorResponse "Run store unavailable"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ingest-data [post]
func (h *IngestHandler) StartIngest(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Start(r.Context(), batch.TriggerAPI)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to start reconciliation run", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Reconciliation run started", slog.String("runID", run.ID))
	respondJSON(w, http.StatusAccepted, dto.NewIngestStartedResponse(run))
}

// GetIngestRun handles GET /ingest-data/{runID}
//
// @Summary Get a reconciliation run
// @Description Returns the run status and, once finished, its report.
// @Tags Ingest
// @Produce json
// @Param runID path string true "Run ID"
// @Success 200 {object} batch.Run "Run state"
// @Failure 404 {object} dto.ErrorResponse "Unknown or expired run"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ingest-data/{runID} [get]
func (h *IngestHandler) GetIngestRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(chi.URLParam(r, "runID"))
	if runID == "" {
		respondError(w, apperrors.NewValidationError("run_id", "is required"))
		return
	}

	run, err := h.runner.Get(r.Context(), runID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Failed to load reconciliation run", slog.String("runID", runID), slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}
