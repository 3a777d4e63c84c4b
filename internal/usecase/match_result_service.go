package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	PlayerUpdateStatusUpdated = "updated"
	PlayerUpdateStatusSkipped = "skipped"
	PlayerUpdateStatusFailed  = "failed"
)

const (
	skipReasonMissingGoals    = "missing_goals"
	skipReasonMissingPlayerID = "missing_player_id"
	skipReasonNoSeasonRecord  = "player_season_not_found"
)

// RecalculationEnqueuer queues an asynchronous fantasy recalculation.
type RecalculationEnqueuer interface {
	EnqueueFantasyRecalculation(ctx context.Context, fixtureID string) error
}

type MatchResultConfig struct {
	WorkerCount     int
	RecalcOnResult  bool
	DefaultSeasonID string
}

type MatchupResultInput struct {
	HomePlayerID string
	AwayPlayerID string
	HomeGoals    *int
	AwayGoals    *int
}

type SubmitResultInput struct {
	FixtureID           string
	SeasonID            string
	Matchups            []MatchupResultInput
	SkipSalaryDeduction bool
}

// PlayerUpdateResult is the outcome for one side of one matchup.
type PlayerUpdateResult struct {
	MatchupIndex   int              `json:"matchup_index"`
	Side           fixture.Side     `json:"side"`
	PlayerID       string           `json:"player_id"`
	TeamID         string           `json:"team_id,omitempty"`
	Status         string           `json:"status"`
	Reason         string           `json:"reason,omitempty"`
	GoalDifference int              `json:"goal_difference"`
	PointsChange   int              `json:"points_change"`
	PreviousPoints int              `json:"previous_points"`
	NewPoints      int              `json:"new_points"`
	PreviousStar   int              `json:"previous_star_rating"`
	NewStar        int              `json:"new_star_rating"`
	StarChanged    bool             `json:"star_changed"`
	SalaryPerMatch *decimal.Decimal `json:"salary_per_match,omitempty"`
}

type SubmitResultOutput struct {
	FixtureID           string
	Updates             []PlayerUpdateResult
	SalaryDeductions    []SalaryDeduction
	SalaryErrors        []SalaryError
	SalarySkipped       bool
	SalarySkipReason    string
	RecalculationQueued bool
}

// MatchResultService turns committee-entered matchup scores into rating
// updates and then settles the fixture's salaries.
type MatchResultService struct {
	playerRepo  playerseason.Repository
	mirror      playerseason.LegacyMirror
	fixtureRepo fixture.Repository
	settlement  *SalarySettlementService
	enqueuer    RecalculationEnqueuer
	cfg         MatchResultConfig
	logger      *logging.Logger
	now         func() time.Time
	newPool     func(size int) (*ants.Pool, error)
}

func NewMatchResultService(
	playerRepo playerseason.Repository,
	mirror playerseason.LegacyMirror,
	fixtureRepo fixture.Repository,
	settlement *SalarySettlementService,
	enqueuer RecalculationEnqueuer,
	cfg MatchResultConfig,
	logger *logging.Logger,
) *MatchResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 8
	}

	return &MatchResultService{
		playerRepo:  playerRepo,
		mirror:      mirror,
		fixtureRepo: fixtureRepo,
		settlement:  settlement,
		enqueuer:    enqueuer,
		cfg:         cfg,
		logger:      logger.Component("match_result"),
		now:         time.Now,
		newPool: func(size int) (*ants.Pool, error) {
			return ants.NewPool(size)
		},
	}
}

// playerDelta is one pending change for one player inside a submission.
type playerDelta struct {
	order          int
	matchupIndex   int
	side           fixture.Side
	playerID       string
	goalDifference int
}

// SubmitResult applies every matchup and then runs the salary batch. A player
// appearing in several matchups has the deltas applied in submission order.
func (s *MatchResultService) SubmitResult(ctx context.Context, input SubmitResultInput) (SubmitResultOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchResultService.SubmitResult")
	defer span.End()

	fixtureID := strings.TrimSpace(input.FixtureID)
	if fixtureID == "" {
		return SubmitResultOutput{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	if len(input.Matchups) == 0 {
		return SubmitResultOutput{}, fmt.Errorf("%w: at least one matchup is required", ErrInvalidInput)
	}

	seasonID, err := s.resolveSeason(ctx, fixtureID, input.SeasonID)
	if err != nil {
		return SubmitResultOutput{}, err
	}
	span.SetAttributes(
		attribute.String("fixture.id", fixtureID),
		attribute.String("season.id", seasonID),
		attribute.Int("matchups", len(input.Matchups)),
	)

	updates, deltas := s.collectDeltas(ctx, fixtureID, input.Matchups)
	applied, tracked, err := s.applyDeltas(ctx, seasonID, deltas)
	if err != nil {
		return SubmitResultOutput{}, err
	}
	updates = append(updates, applied...)
	sort.SliceStable(updates, func(i, j int) bool {
		if updates[i].MatchupIndex != updates[j].MatchupIndex {
			return updates[i].MatchupIndex < updates[j].MatchupIndex
		}
		return updates[i].Side == fixture.SideHome && updates[j].Side != fixture.SideHome
	})

	out := SubmitResultOutput{
		FixtureID:        fixtureID,
		Updates:          updates,
		SalaryDeductions: make([]SalaryDeduction, 0),
		SalaryErrors:     make([]SalaryError, 0),
	}

	if s.settlement != nil {
		settled, err := s.settlement.Settle(ctx, SettleSalariesInput{
			FixtureID: fixtureID,
			SeasonID:  seasonID,
			Players:   tracked,
			Skip:      input.SkipSalaryDeduction,
		})
		if err != nil {
			return SubmitResultOutput{}, fmt.Errorf("settle salaries fixture=%s: %w", fixtureID, err)
		}
		out.SalaryDeductions = settled.Deductions
		out.SalaryErrors = settled.Errors
		out.SalarySkipped = settled.Skipped
		out.SalarySkipReason = settled.SkipReason
	}

	if s.cfg.RecalcOnResult && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueFantasyRecalculation(ctx, fixtureID); err != nil {
			s.logger.WarnContext(ctx, "enqueue fantasy recalculation failed", "fixture_id", fixtureID, "error", err)
		} else {
			out.RecalculationQueued = true
		}
	}

	s.logger.InfoContext(ctx, "match result applied",
		"fixture_id", fixtureID,
		"updates", len(out.Updates),
		"salary_deductions", len(out.SalaryDeductions),
		"salary_errors", len(out.SalaryErrors),
		"salary_skip_reason", out.SalarySkipReason,
	)
	return out, nil
}

func (s *MatchResultService) resolveSeason(ctx context.Context, fixtureID, seasonID string) (string, error) {
	seasonID = strings.TrimSpace(seasonID)
	if s.fixtureRepo != nil {
		item, exists, err := s.fixtureRepo.GetByID(ctx, fixtureID)
		if err != nil {
			return "", fmt.Errorf("get fixture=%s: %w", fixtureID, err)
		}
		if !exists {
			return "", fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
		}
		if seasonID == "" {
			seasonID = item.SeasonID
		}
		if seasonID != item.SeasonID {
			return "", fmt.Errorf("%w: fixture=%s belongs to season=%s", ErrInvalidInput, fixtureID, item.SeasonID)
		}
	}
	if seasonID == "" {
		seasonID = s.cfg.DefaultSeasonID
	}
	if seasonID == "" {
		return "", fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	return seasonID, nil
}

// collectDeltas turns matchups into per-side deltas. Sides that cannot be
// scored come back as skipped results.
func (s *MatchResultService) collectDeltas(ctx context.Context, fixtureID string, matchups []MatchupResultInput) ([]PlayerUpdateResult, []playerDelta) {
	skipped := make([]PlayerUpdateResult, 0)
	deltas := make([]playerDelta, 0, len(matchups)*2)

	for idx, matchup := range matchups {
		sides := []struct {
			side     fixture.Side
			playerID string
		}{
			{side: fixture.SideHome, playerID: strings.TrimSpace(matchup.HomePlayerID)},
			{side: fixture.SideAway, playerID: strings.TrimSpace(matchup.AwayPlayerID)},
		}

		for _, item := range sides {
			goalsFor, goalsAgainst, ok := fixture.Score(item.side, matchup.HomeGoals, matchup.AwayGoals)
			if !ok {
				s.logger.WarnContext(ctx, "matchup dropped, goal tally missing",
					"fixture_id", fixtureID,
					"matchup_index", idx,
					"player_id", item.playerID,
				)
				skipped = append(skipped, PlayerUpdateResult{
					MatchupIndex: idx,
					Side:         item.side,
					PlayerID:     item.playerID,
					Status:       PlayerUpdateStatusSkipped,
					Reason:       skipReasonMissingGoals,
				})
				continue
			}
			if item.playerID == "" {
				skipped = append(skipped, PlayerUpdateResult{
					MatchupIndex: idx,
					Side:         item.side,
					Status:       PlayerUpdateStatusSkipped,
					Reason:       skipReasonMissingPlayerID,
				})
				continue
			}

			deltas = append(deltas, playerDelta{
				order:          len(deltas),
				matchupIndex:   idx,
				side:           item.side,
				playerID:       item.playerID,
				goalDifference: goalsFor - goalsAgainst,
			})
		}
	}

	return skipped, deltas
}

// applyDeltas groups deltas by player and runs each group on the worker
// pool. The returned records are the post-update state of every player that
// was written.
func (s *MatchResultService) applyDeltas(ctx context.Context, seasonID string, deltas []playerDelta) ([]PlayerUpdateResult, []playerseason.Record, error) {
	if len(deltas) == 0 {
		return nil, nil, nil
	}

	groups := make(map[string][]playerDelta)
	playerOrder := make([]string, 0)
	for _, delta := range deltas {
		if _, ok := groups[delta.playerID]; !ok {
			playerOrder = append(playerOrder, delta.playerID)
		}
		groups[delta.playerID] = append(groups[delta.playerID], delta)
	}

	workerCount := s.cfg.WorkerCount
	if workerCount > len(playerOrder) {
		workerCount = len(playerOrder)
	}
	pool, err := s.newPool(workerCount)
	if err != nil {
		return nil, nil, fmt.Errorf("create ingest worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		results = make([]PlayerUpdateResult, 0, len(deltas))
		tracked = make(map[string]playerseason.Record, len(playerOrder))
		workers sync.WaitGroup
		// Workers already submitted must finish before returning, even when a
		// later submit fails.
		submitErr error
	)

	for _, playerID := range playerOrder {
		group := groups[playerID]
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			rows, record, ok := s.applyPlayerGroup(ctx, seasonID, group)
			mu.Lock()
			defer mu.Unlock()
			results = append(results, rows...)
			if ok {
				tracked[record.PlayerID] = record
			}
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit player=%s to ingest pool: %w", playerID, err)
			break
		}
	}
	workers.Wait()
	if submitErr != nil {
		return nil, nil, submitErr
	}

	records := make([]playerseason.Record, 0, len(tracked))
	for _, playerID := range playerOrder {
		if record, ok := tracked[playerID]; ok {
			records = append(records, record)
		}
	}
	return results, records, nil
}

func (s *MatchResultService) applyPlayerGroup(ctx context.Context, seasonID string, group []playerDelta) ([]PlayerUpdateResult, playerseason.Record, bool) {
	rows := make([]PlayerUpdateResult, 0, len(group))
	playerID := group[0].playerID

	record, exists, err := s.playerRepo.Get(ctx, seasonID, playerID)
	if err != nil || !exists {
		status, reason := PlayerUpdateStatusSkipped, skipReasonNoSeasonRecord
		if err != nil {
			status, reason = PlayerUpdateStatusFailed, err.Error()
			s.logger.WarnContext(ctx, "load player season failed", "player_id", playerID, "season_id", seasonID, "error", err)
		} else {
			s.logger.InfoContext(ctx, "player season record not found", "player_id", playerID, "season_id", seasonID)
		}
		for _, delta := range group {
			rows = append(rows, PlayerUpdateResult{
				MatchupIndex:   delta.matchupIndex,
				Side:           delta.side,
				PlayerID:       playerID,
				Status:         status,
				Reason:         reason,
				GoalDifference: delta.goalDifference,
			})
		}
		return rows, playerseason.Record{}, false
	}

	written := false
	for _, delta := range group {
		row, next, err := s.applyDelta(ctx, record, delta)
		rows = append(rows, row)
		if err != nil {
			s.logger.WarnContext(ctx, "player rating update failed",
				"player_id", playerID,
				"matchup_index", delta.matchupIndex,
				"error", err,
			)
			continue
		}
		record = next
		written = true
	}

	if written && s.mirror != nil {
		if err := s.mirror.MirrorRating(ctx, playerID, record.CurrentPoints(), record.StarRating); err != nil {
			s.logger.WarnContext(ctx, "legacy player mirror failed", "player_id", playerID, "error", err)
		}
	}
	return rows, record, written
}

func (s *MatchResultService) applyDelta(ctx context.Context, record playerseason.Record, delta playerDelta) (PlayerUpdateResult, playerseason.Record, error) {
	previousPoints := record.CurrentPoints()
	previousStar := playerseason.ClampStarRating(record.StarRating)
	pointsChange := playerseason.ClampPointsChange(delta.goalDifference)
	newPoints := previousPoints + pointsChange
	newStar := playerseason.StarRatingForPoints(newPoints)

	update := playerseason.RatingUpdate{
		PlayerID:   record.PlayerID,
		SeasonID:   record.SeasonID,
		Points:     newPoints,
		StarRating: newStar,
		UpdatedAt:  s.now().UTC(),
	}
	row := PlayerUpdateResult{
		MatchupIndex:   delta.matchupIndex,
		Side:           delta.side,
		PlayerID:       record.PlayerID,
		TeamID:         record.TeamID,
		Status:         PlayerUpdateStatusUpdated,
		GoalDifference: delta.goalDifference,
		PointsChange:   pointsChange,
		PreviousPoints: previousPoints,
		NewPoints:      newPoints,
		PreviousStar:   previousStar,
		NewStar:        newStar,
		StarChanged:    newStar != previousStar,
	}
	if row.StarChanged {
		salary := playerseason.CalculateSalary(record.AuctionValue, newStar)
		update.SalaryPerMatch = &salary
		row.SalaryPerMatch = &salary
	}

	if err := s.playerRepo.UpdateRating(ctx, update); err != nil {
		row.Status = PlayerUpdateStatusFailed
		row.Reason = err.Error()
		return row, record, err
	}
	return row, record.Apply(update), nil
}
