package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const fantasyRecalculationLockKey = "fantasy-recalculate"

const (
	recalcStatusSuccess = "success"
	recalcStatusFailed  = "failed"
)

type FantasyRecalculationConfig struct {
	LeagueConcurrency int
}

type RecalculateInput struct {
	LeagueID string
}

type LeagueRecalculationSummary struct {
	LeagueID     string              `json:"league_id"`
	SeasonID     string              `json:"season_id"`
	Status       string              `json:"status"`
	Error        string              `json:"error,omitempty"`
	PlayerPoints PlayerPointsSummary `json:"player_points"`
	TeamBonuses  TeamBonusSummary    `json:"team_bonuses"`
	TeamCount    int                 `json:"team_count"`
	DurationMs   int64               `json:"duration_ms"`
}

type RecalculateResult struct {
	LeagueCount  int                          `json:"league_count"`
	SuccessCount int                          `json:"success_count"`
	FailedCount  int                          `json:"failed_count"`
	Leagues      []LeagueRecalculationSummary `json:"leagues"`
}

// FantasyRecalculationService runs the full fantasy rebuild. Only one run may
// be active at a time; leagues run in parallel and each league runs player
// scoring, team bonus and aggregation in that order.
type FantasyRecalculationService struct {
	fantasyRepo fantasy.Repository
	scoring     *FantasyScoringService
	cfg         FantasyRecalculationConfig
	lock        resilience.SingleFlight
	logger      *logging.Logger
}

func NewFantasyRecalculationService(
	fantasyRepo fantasy.Repository,
	scoring *FantasyScoringService,
	cfg FantasyRecalculationConfig,
	logger *logging.Logger,
) *FantasyRecalculationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LeagueConcurrency <= 0 {
		cfg.LeagueConcurrency = 4
	}

	return &FantasyRecalculationService{
		fantasyRepo: fantasyRepo,
		scoring:     scoring,
		cfg:         cfg,
		logger:      logger.Component("fantasy_recalculation"),
	}
}

// Running reports whether a recalculation holds the lock.
func (s *FantasyRecalculationService) Running() bool {
	return s.lock.InFlight(fantasyRecalculationLockKey)
}

func (s *FantasyRecalculationService) Recalculate(ctx context.Context, input RecalculateInput) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FantasyRecalculationService.Recalculate")
	defer span.End()

	value, err, acquired := s.lock.TryDo(fantasyRecalculationLockKey, func() (any, error) {
		return s.run(ctx, input)
	})
	if !acquired {
		return RecalculateResult{}, fmt.Errorf("%w: fantasy recalculation", ErrAlreadyRunning)
	}
	if err != nil {
		return RecalculateResult{}, err
	}

	result, _ := value.(RecalculateResult)
	span.SetAttributes(
		attribute.Int("leagues", result.LeagueCount),
		attribute.Int("failed", result.FailedCount),
	)
	return result, nil
}

func (s *FantasyRecalculationService) run(ctx context.Context, input RecalculateInput) (RecalculateResult, error) {
	s.refreshSources(ctx)

	leagues, err := s.pickLeagues(ctx, input.LeagueID)
	if err != nil {
		return RecalculateResult{}, err
	}

	workers := pool.NewWithResults[LeagueRecalculationSummary]().WithMaxGoroutines(s.cfg.LeagueConcurrency)
	for _, league := range leagues {
		workers.Go(func() LeagueRecalculationSummary {
			return s.recalculateLeague(ctx, league)
		})
	}
	summaries := workers.Wait()

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LeagueID < summaries[j].LeagueID
	})

	result := RecalculateResult{
		LeagueCount: len(leagues),
		Leagues:     summaries,
	}
	for _, summary := range summaries {
		if summary.Status == recalcStatusSuccess {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}

	s.logger.InfoContext(ctx, "fantasy recalculation finished",
		"leagues", result.LeagueCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *FantasyRecalculationService) recalculateLeague(ctx context.Context, league fantasy.League) LeagueRecalculationSummary {
	start := time.Now()
	summary := LeagueRecalculationSummary{
		LeagueID: league.ID,
		SeasonID: league.SeasonID,
		Status:   recalcStatusSuccess,
	}

	fail := func(stage string, err error) LeagueRecalculationSummary {
		s.logger.ErrorContext(ctx, "fantasy league recalculation failed",
			"league_id", league.ID,
			"stage", stage,
			"error", err,
		)
		summary.Status = recalcStatusFailed
		summary.Error = stage + ": " + err.Error()
		summary.DurationMs = time.Since(start).Milliseconds()
		return summary
	}

	points, err := s.scoring.RecalculatePlayerPoints(ctx, league)
	if err != nil {
		return fail("player_points", err)
	}
	summary.PlayerPoints = points

	bonuses, err := s.scoring.RecalculateTeamBonuses(ctx, league)
	if err != nil {
		return fail("team_bonuses", err)
	}
	summary.TeamBonuses = bonuses

	teams, err := s.scoring.AggregateAndRank(ctx, league)
	if err != nil {
		return fail("aggregate", err)
	}
	summary.TeamCount = len(teams)
	summary.DurationMs = time.Since(start).Milliseconds()
	return summary
}

// sourceRefresher is implemented by read-through caches. A rebuild reads
// leagues and rules from source, so cached copies are dropped first.
type sourceRefresher interface {
	Refresh(ctx context.Context)
}

func (s *FantasyRecalculationService) refreshSources(ctx context.Context) {
	sources := []any{s.fantasyRepo}
	if s.scoring != nil {
		sources = append(sources, s.scoring.fantasyRepo, s.scoring.ruleRepo)
	}
	for _, source := range sources {
		if refresher, ok := source.(sourceRefresher); ok {
			refresher.Refresh(ctx)
		}
	}
}

func (s *FantasyRecalculationService) pickLeagues(ctx context.Context, leagueID string) ([]fantasy.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		items, err := s.fantasyRepo.ListLeagues(ctx)
		if err != nil {
			return nil, fmt.Errorf("list fantasy leagues: %w", err)
		}
		return items, nil
	}

	item, exists, err := s.fantasyRepo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get fantasy league=%s: %w", leagueID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: fantasy league=%s", ErrNotFound, leagueID)
	}
	return []fantasy.League{item}, nil
}
