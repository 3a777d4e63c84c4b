package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/usecase"
)

func (h *Handler) SubmitFixtureResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitFixtureResult")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	var req submitResultRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchups := make([]usecase.MatchupResultInput, 0, len(req.Matchups))
	for _, item := range req.Matchups {
		matchups = append(matchups, usecase.MatchupResultInput{
			HomePlayerID: item.HomePlayerID,
			AwayPlayerID: item.AwayPlayerID,
			HomeGoals:    item.HomeGoals,
			AwayGoals:    item.AwayGoals,
		})
	}

	out, err := h.matchResultService.SubmitResult(ctx, usecase.SubmitResultInput{
		FixtureID:           fixtureID,
		SeasonID:            req.SeasonID,
		Matchups:            matchups,
		SkipSalaryDeduction: req.SkipSalaryDeduction,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit fixture result failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitResultToDTO(ctx, out))
}

func (h *Handler) ListFixtureSalaryTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtureSalaryTransactions")
	defer span.End()

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	items, err := h.settlementService.ListTransactions(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "list salary transactions failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]salaryTransactionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, salaryTransactionToDTO(ctx, item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ChargeTeamBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ChargeTeamBudget")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	var req budgetAdjustmentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(ctx, w, fmt.Errorf("%w: amount must be > 0", usecase.ErrInvalidInput))
		return
	}

	tx, err := h.settlementService.ChargeBudget(ctx, usecase.BudgetAdjustmentInput{
		TeamID:    teamID,
		SeasonID:  seasonID,
		Currency:  budget.Currency(req.Currency),
		Amount:    req.Amount,
		FixtureID: req.FixtureID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "charge team budget failed",
			"team_id", teamID,
			"season_id", seasonID,
			"amount", req.Amount.String(),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, salaryTransactionToDTO(ctx, tx))
}
