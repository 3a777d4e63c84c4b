package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/usecase"
	"github.com/shopspring/decimal"
)

type matchupResultRequest struct {
	HomePlayerID string `json:"home_player_id"`
	AwayPlayerID string `json:"away_player_id"`
	HomeGoals    *int   `json:"home_goals" validate:"omitempty,min=0"`
	AwayGoals    *int   `json:"away_goals" validate:"omitempty,min=0"`
}

type submitResultRequest struct {
	SeasonID            string                 `json:"season_id" validate:"omitempty,max=64"`
	Matchups            []matchupResultRequest `json:"matchups" validate:"required,min=1,dive"`
	SkipSalaryDeduction bool                   `json:"skip_salary_deduction"`
}

type budgetAdjustmentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" validate:"omitempty,oneof=real_player football legacy"`
	FixtureID string          `json:"fixture_id" validate:"omitempty,max=64"`
	Reason    string          `json:"reason" validate:"required,max=200"`
}

type fantasyRecalculateRequest struct {
	LeagueID string `json:"league_id" validate:"omitempty,max=64"`
}

type internalJobRecalculateRequest struct {
	DispatchID string `json:"dispatch_id"`
	LeagueID   string `json:"league_id"`
	FixtureID  string `json:"fixture_id"`
}

type submitResultDTO struct {
	FixtureID           string                       `json:"fixture_id"`
	Updates             []usecase.PlayerUpdateResult `json:"updates"`
	SalaryDeductions    []usecase.SalaryDeduction    `json:"salary_deductions"`
	SalaryErrors        []usecase.SalaryError        `json:"salary_errors"`
	SalarySkipped       bool                         `json:"salary_skipped"`
	SalarySkipReason    string                       `json:"salary_skip_reason,omitempty"`
	RecalculationQueued bool                         `json:"recalculation_queued"`
}

type salaryTransactionDTO struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	TeamID        string            `json:"team_id"`
	SeasonID      string            `json:"season_id"`
	PlayerID      string            `json:"player_id,omitempty"`
	FixtureID     string            `json:"fixture_id,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	BalanceBefore decimal.Decimal   `json:"balance_before"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

type fantasyStandingDTO struct {
	Rank            int    `json:"rank"`
	TeamID          string `json:"team_id"`
	Name            string `json:"name"`
	SupportedTeamID string `json:"supported_team_id,omitempty"`
	PlayerPoints    int    `json:"player_points"`
	PassivePoints   int    `json:"passive_points"`
	TotalPoints     int    `json:"total_points"`
}

type fantasyStandingsDTO struct {
	LeagueID string               `json:"league_id"`
	SeasonID string               `json:"season_id"`
	Name     string               `json:"name"`
	Teams    []fantasyStandingDTO `json:"teams"`
}

func submitResultToDTO(ctx context.Context, out usecase.SubmitResultOutput) submitResultDTO {
	ctx, span := startSpan(ctx, "httpapi.submitResultToDTO")
	defer span.End()

	dto := submitResultDTO{
		FixtureID:           out.FixtureID,
		Updates:             out.Updates,
		SalaryDeductions:    out.SalaryDeductions,
		SalaryErrors:        out.SalaryErrors,
		SalarySkipped:       out.SalarySkipped,
		SalarySkipReason:    out.SalarySkipReason,
		RecalculationQueued: out.RecalculationQueued,
	}
	if dto.Updates == nil {
		dto.Updates = []usecase.PlayerUpdateResult{}
	}
	if dto.SalaryDeductions == nil {
		dto.SalaryDeductions = []usecase.SalaryDeduction{}
	}
	if dto.SalaryErrors == nil {
		dto.SalaryErrors = []usecase.SalaryError{}
	}
	return dto
}

func salaryTransactionToDTO(ctx context.Context, v budget.SalaryTransaction) salaryTransactionDTO {
	ctx, span := startSpan(ctx, "httpapi.salaryTransactionToDTO")
	defer span.End()

	return salaryTransactionDTO{
		ID:            v.ID,
		Type:          v.Type,
		TeamID:        v.TeamID,
		SeasonID:      v.SeasonID,
		PlayerID:      v.PlayerID,
		FixtureID:     v.FixtureID,
		Amount:        v.Amount,
		BalanceBefore: v.BalanceBefore,
		BalanceAfter:  v.BalanceAfter,
		Currency:      string(v.Currency),
		Metadata:      v.Metadata,
		CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func fantasyStandingsToDTO(ctx context.Context, league fantasy.League, teams []fantasy.Team) fantasyStandingsDTO {
	ctx, span := startSpan(ctx, "httpapi.fantasyStandingsToDTO")
	defer span.End()

	items := make([]fantasyStandingDTO, 0, len(teams))
	for _, team := range teams {
		items = append(items, fantasyStandingDTO{
			Rank:            team.Rank,
			TeamID:          team.ID,
			Name:            team.Name,
			SupportedTeamID: team.SupportedTeamID,
			PlayerPoints:    team.PlayerPoints,
			PassivePoints:   team.PassivePoints,
			TotalPoints:     team.TotalPoints,
		})
	}

	return fantasyStandingsDTO{
		LeagueID: league.ID,
		SeasonID: league.SeasonID,
		Name:     league.Name,
		Teams:    items,
	}
}
