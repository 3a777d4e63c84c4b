package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/league-scoring/internal/usecase"
)

// RunFantasyRecalculationJob is the queue callback for a scheduled rebuild.
func (h *Handler) RunFantasyRecalculationJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFantasyRecalculationJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalJobRecalculateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunFantasyRecalculation(ctx, usecase.FantasyRecalcJobInput{
		DispatchID: req.DispatchID,
		LeagueID:   req.LeagueID,
		FixtureID:  req.FixtureID,
		Trigger:    "queue",
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run fantasy recalculation job failed",
			"dispatch_id", req.DispatchID,
			"fixture_id", req.FixtureID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
