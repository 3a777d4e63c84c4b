package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	"github.com/riskibarqy/league-scoring/internal/platform/id"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SalarySkipReasonRequested        = "skipped_by_request"
	SalarySkipReasonAlreadyProcessed = "already_processed"
)

const (
	salaryErrorPreflight         = "preflight_failed"
	salaryErrorTeamSeasonMissing = "team_season_not_found"
	salaryErrorDuplicate         = "duplicate_salary"
	salaryErrorVersionConflict   = "version_conflict"
	salaryErrorDeduction         = "deduction_failed"
)

type SalarySettlementConfig struct {
	CASRetries int
}

// SalarySettlementService charges per-match salaries against team budgets
// once per fixture.
type SalarySettlementService struct {
	budgetRepo budget.Repository
	ids        id.Generator
	retry      resilience.RetryPolicy
	logger     *logging.Logger
	now        func() time.Time
}

type SettleSalariesInput struct {
	FixtureID string
	SeasonID  string
	// Players are the season records after the rating update.
	Players []playerseason.Record
	Skip    bool
}

type SalaryDeduction struct {
	TransactionID string          `json:"transaction_id"`
	PlayerID      string          `json:"player_id"`
	TeamID        string          `json:"team_id"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Currency      budget.Currency `json:"currency"`
}

type SalaryError struct {
	PlayerID string `json:"player_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

type SettleSalariesResult struct {
	Deductions []SalaryDeduction
	Errors     []SalaryError
	Skipped    bool
	SkipReason string
}

type BudgetAdjustmentInput struct {
	TeamID    string
	SeasonID  string
	Currency  budget.Currency
	Amount    decimal.Decimal
	FixtureID string
	Reason    string
}

func NewSalarySettlementService(
	budgetRepo budget.Repository,
	ids id.Generator,
	cfg SalarySettlementConfig,
	logger *logging.Logger,
) *SalarySettlementService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	policy := resilience.DefaultRetryPolicy()
	if cfg.CASRetries > 0 {
		policy.Attempts = cfg.CASRetries
	}

	return &SalarySettlementService{
		budgetRepo: budgetRepo,
		ids:        ids,
		retry:      policy,
		logger:     logger.Component("salary_settlement"),
		now:        time.Now,
	}
}

// Settle runs the fixture's salary batch. A fixture that already has salary
// rows is never charged again. Per-player failures are collected in the
// result and do not stop the remaining deductions.
func (s *SalarySettlementService) Settle(ctx context.Context, input SettleSalariesInput) (SettleSalariesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SalarySettlementService.Settle")
	defer span.End()

	fixtureID := strings.TrimSpace(input.FixtureID)
	if fixtureID == "" {
		return SettleSalariesResult{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("fixture.id", fixtureID), attribute.Int("players", len(input.Players)))

	result := SettleSalariesResult{
		Deductions: make([]SalaryDeduction, 0),
		Errors:     make([]SalaryError, 0),
	}
	if input.Skip {
		result.Skipped = true
		result.SkipReason = SalarySkipReasonRequested
		return result, nil
	}

	processed, err := s.budgetRepo.HasSalaryTransactionForFixture(ctx, fixtureID)
	if err != nil {
		s.logger.WarnContext(ctx, "salary pre-flight check failed", "fixture_id", fixtureID, "error", err)
		result.Errors = append(result.Errors, SalaryError{
			Code:    salaryErrorPreflight,
			Message: err.Error(),
		})
		return result, nil
	}
	if processed {
		s.logger.InfoContext(ctx, "salary already processed for fixture", "fixture_id", fixtureID)
		result.Skipped = true
		result.SkipReason = SalarySkipReasonAlreadyProcessed
		return result, nil
	}

	for _, player := range uniquePlayers(input.Players) {
		teamID := strings.TrimSpace(player.TeamID)
		if teamID == "" || !player.SalaryPerMatch.IsPositive() {
			s.logger.InfoContext(ctx, "salary deduction skipped",
				"fixture_id", fixtureID,
				"player_id", player.PlayerID,
				"team_id", teamID,
				"salary", player.SalaryPerMatch.String(),
			)
			continue
		}

		seasonID := strings.TrimSpace(player.SeasonID)
		if seasonID == "" {
			seasonID = input.SeasonID
		}

		deduction, err := s.deductSalary(ctx, fixtureID, seasonID, player)
		if err != nil {
			salaryErr := classifySalaryError(player, err)
			s.logger.WarnContext(ctx, "salary deduction failed",
				"fixture_id", fixtureID,
				"player_id", player.PlayerID,
				"team_id", teamID,
				"code", salaryErr.Code,
				"error", err,
			)
			result.Errors = append(result.Errors, salaryErr)
			continue
		}
		result.Deductions = append(result.Deductions, deduction)
	}

	span.SetAttributes(
		attribute.Int("salary.deductions", len(result.Deductions)),
		attribute.Int("salary.errors", len(result.Errors)),
	)
	return result, nil
}

func (s *SalarySettlementService) deductSalary(ctx context.Context, fixtureID, seasonID string, player playerseason.Record) (SalaryDeduction, error) {
	txID, err := s.ids.NewID()
	if err != nil {
		return SalaryDeduction{}, fmt.Errorf("generate salary transaction id: %w", err)
	}

	var out SalaryDeduction
	err = resilience.Retry(ctx, s.retry, isVersionConflict, func(attempt int) error {
		current, err := s.budgetRepo.GetTeamSeason(ctx, player.TeamID, seasonID)
		if err != nil {
			return err
		}

		currency := current.SalaryCurrency()
		before, _, err := current.Balance(currency)
		if err != nil {
			return err
		}
		updated, err := current.Debit(currency, player.SalaryPerMatch, true)
		if err != nil {
			return err
		}
		after, _, _ := updated.Balance(currency)
		updated.UpdatedAt = s.now().UTC()

		tx := budget.SalaryTransaction{
			ID:            txID,
			Type:          budget.TransactionTypeSalary,
			TeamID:        player.TeamID,
			SeasonID:      seasonID,
			PlayerID:      player.PlayerID,
			FixtureID:     fixtureID,
			Amount:        player.SalaryPerMatch,
			BalanceBefore: before,
			BalanceAfter:  after,
			Currency:      currency,
			Metadata: map[string]string{
				"player_name": player.Name,
				"star_rating": fmt.Sprintf("%d", player.StarRating),
				"attempt":     fmt.Sprintf("%d", attempt),
			},
			CreatedAt: updated.UpdatedAt,
		}
		if err := s.budgetRepo.ApplyDeduction(ctx, updated, current.Version, tx); err != nil {
			return err
		}

		out = SalaryDeduction{
			TransactionID: txID,
			PlayerID:      player.PlayerID,
			TeamID:        player.TeamID,
			Amount:        player.SalaryPerMatch,
			BalanceBefore: before,
			BalanceAfter:  after,
			Currency:      currency,
		}
		return nil
	})
	return out, err
}

// ChargeBudget applies a manual debit that may not overdraw the account.
func (s *SalarySettlementService) ChargeBudget(ctx context.Context, input BudgetAdjustmentInput) (budget.SalaryTransaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SalarySettlementService.ChargeBudget")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.SeasonID = strings.TrimSpace(input.SeasonID)
	if input.TeamID == "" || input.SeasonID == "" {
		return budget.SalaryTransaction{}, fmt.Errorf("%w: team id and season id are required", ErrInvalidInput)
	}
	if !input.Amount.IsPositive() {
		return budget.SalaryTransaction{}, fmt.Errorf("%w: amount must be > 0", ErrInvalidInput)
	}

	txID, err := s.ids.NewID()
	if err != nil {
		return budget.SalaryTransaction{}, fmt.Errorf("generate adjustment id: %w", err)
	}

	var out budget.SalaryTransaction
	err = resilience.Retry(ctx, s.retry, isVersionConflict, func(_ int) error {
		current, err := s.budgetRepo.GetTeamSeason(ctx, input.TeamID, input.SeasonID)
		if err != nil {
			return err
		}

		currency := input.Currency
		if currency == "" {
			currency = current.SalaryCurrency()
		}
		before, _, err := current.Balance(currency)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updated, err := current.Debit(currency, input.Amount, false)
		if err != nil {
			return err
		}
		after, _, _ := updated.Balance(currency)
		updated.UpdatedAt = s.now().UTC()

		tx := budget.SalaryTransaction{
			ID:            txID,
			Type:          budget.TransactionTypeAdjustment,
			TeamID:        input.TeamID,
			SeasonID:      input.SeasonID,
			FixtureID:     strings.TrimSpace(input.FixtureID),
			Amount:        input.Amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Currency:      currency,
			Metadata:      map[string]string{"reason": strings.TrimSpace(input.Reason)},
			CreatedAt:     updated.UpdatedAt,
		}
		if err := s.budgetRepo.ApplyDeduction(ctx, updated, current.Version, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, budget.ErrTeamSeasonNotFound):
		return budget.SalaryTransaction{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, budget.ErrVersionConflict):
		return budget.SalaryTransaction{}, fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return budget.SalaryTransaction{}, err
	}
}

// ListTransactions returns the ledger rows of one fixture, oldest first.
func (s *SalarySettlementService) ListTransactions(ctx context.Context, fixtureID string) ([]budget.SalaryTransaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SalarySettlementService.ListTransactions")
	defer span.End()

	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return nil, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	items, err := s.budgetRepo.ListSalaryTransactionsByFixture(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("list salary transactions fixture=%s: %w", fixtureID, err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func isVersionConflict(err error) bool {
	return errors.Is(err, budget.ErrVersionConflict)
}

func classifySalaryError(player playerseason.Record, err error) SalaryError {
	out := SalaryError{
		PlayerID: player.PlayerID,
		TeamID:   player.TeamID,
		Code:     salaryErrorDeduction,
		Message:  err.Error(),
	}
	switch {
	case errors.Is(err, budget.ErrTeamSeasonNotFound):
		out.Code = salaryErrorTeamSeasonMissing
	case errors.Is(err, budget.ErrDuplicateSalary):
		out.Code = salaryErrorDuplicate
	case errors.Is(err, budget.ErrVersionConflict):
		out.Code = salaryErrorVersionConflict
	}
	return out
}

// uniquePlayers keeps the last record per player in first-seen order.
func uniquePlayers(items []playerseason.Record) []playerseason.Record {
	index := make(map[string]int, len(items))
	out := make([]playerseason.Record, 0, len(items))
	for _, item := range items {
		if pos, ok := index[item.PlayerID]; ok {
			out[pos] = item
			continue
		}
		index[item.PlayerID] = len(out)
		out = append(out, item)
	}
	return out
}
