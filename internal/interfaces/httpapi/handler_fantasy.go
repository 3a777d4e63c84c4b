package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/league-scoring/internal/usecase"
)

func (h *Handler) RecalculateFantasy(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateFantasy")
	defer span.End()

	var req fantasyRecalculateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recalcService.Recalculate(ctx, usecase.RecalculateInput{LeagueID: strings.TrimSpace(req.LeagueID)})
	if err != nil {
		h.logger.WarnContext(ctx, "fantasy recalculation failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetFantasyStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFantasyStandings")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	league, teams, err := h.scoringService.Standings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fantasy standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fantasyStandingsToDTO(ctx, league, teams))
}
