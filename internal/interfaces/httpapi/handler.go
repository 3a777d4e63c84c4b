package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/usecase"
)

type Handler struct {
	matchResultService *usecase.MatchResultService
	settlementService  *usecase.SalarySettlementService
	scoringService     *usecase.FantasyScoringService
	recalcService      *usecase.FantasyRecalculationService
	jobOrchestrator    *usecase.JobOrchestratorService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	matchResultService *usecase.MatchResultService,
	settlementService *usecase.SalarySettlementService,
	scoringService *usecase.FantasyScoringService,
	recalcService *usecase.FantasyRecalculationService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchResultService: matchResultService,
		settlementService:  settlementService,
		scoringService:     scoringService,
		recalcService:      recalcService,
		jobOrchestrator:    jobOrchestrator,
		logger:             logger.Component("httpapi"),
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	payload := map[string]any{"status": "ok"}
	if h.recalcService != nil {
		payload["fantasy_recalculation_running"] = h.recalcService.Running()
	}
	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON rejects unknown fields. An empty body is accepted only when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
