package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	"github.com/riskibarqy/league-scoring/internal/platform/id"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// FantasyScoringService rebuilds a fantasy league's points from the real
// season's completed fixtures.
type FantasyScoringService struct {
	fantasyRepo fantasy.Repository
	fixtureRepo fixture.Repository
	ruleRepo    scoringrule.Repository
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

type PlayerPointsSummary struct {
	Fixtures   int `json:"fixtures"`
	Records    int `json:"records"`
	Written    int `json:"written"`
	Duplicates int `json:"duplicates"`
}

type TeamBonusSummary struct {
	Fixtures     int      `json:"fixtures"`
	Credited     int      `json:"credited"`
	AlreadyGiven int      `json:"already_given"`
	ZeroBonus    int      `json:"zero_bonus"`
	IgnoredRules []string `json:"ignored_rules,omitempty"`
}

func NewFantasyScoringService(
	fantasyRepo fantasy.Repository,
	fixtureRepo fixture.Repository,
	ruleRepo scoringrule.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *FantasyScoringService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &FantasyScoringService{
		fantasyRepo: fantasyRepo,
		fixtureRepo: fixtureRepo,
		ruleRepo:    ruleRepo,
		ids:         ids,
		logger:      logger.Component("fantasy_scoring"),
		now:         time.Now,
	}
}

// RecalculatePlayerPoints wipes the league's player points and scores every
// completed matchup for every squad entry holding the player.
func (s *FantasyScoringService) RecalculatePlayerPoints(ctx context.Context, league fantasy.League) (PlayerPointsSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FantasyScoringService.RecalculatePlayerPoints")
	defer span.End()

	rules, err := s.ruleRepo.ListByLeague(ctx, league.ID)
	if err != nil {
		return PlayerPointsSummary{}, fmt.Errorf("list scoring rules league=%s: %w", league.ID, err)
	}
	table := scoringrule.NewTable(rules, scoringrule.TargetPlayer)

	fixtures, err := s.fixtureRepo.ListCompletedBySeason(ctx, league.SeasonID)
	if err != nil {
		return PlayerPointsSummary{}, fmt.Errorf("list completed fixtures season=%s: %w", league.SeasonID, err)
	}
	entries, err := s.fantasyRepo.ListSquadEntriesByLeague(ctx, league.ID)
	if err != nil {
		return PlayerPointsSummary{}, fmt.Errorf("list squad entries league=%s: %w", league.ID, err)
	}
	entriesByPlayer := make(map[string][]fantasy.SquadEntry, len(entries))
	for _, entry := range entries {
		entriesByPlayer[entry.PlayerID] = append(entriesByPlayer[entry.PlayerID], entry)
	}

	if err := s.fantasyRepo.DeletePlayerPointsByLeague(ctx, league.ID); err != nil {
		return PlayerPointsSummary{}, fmt.Errorf("delete player points league=%s: %w", league.ID, err)
	}

	summary := PlayerPointsSummary{Fixtures: len(fixtures)}
	now := s.now().UTC()
	seen := make(map[string]struct{})
	records := make([]fantasy.PlayerPointsRecord, 0)

	for _, item := range fixtures {
		for _, matchup := range item.Matchups {
			if !matchup.HasGoals() {
				continue
			}
			for _, side := range []fixture.Side{fixture.SideHome, fixture.SideAway} {
				playerID := matchup.HomePlayerID
				if side == fixture.SideAway {
					playerID = matchup.AwayPlayerID
				}
				playerID = strings.TrimSpace(playerID)
				if playerID == "" {
					continue
				}

				goalsFor, goalsAgainst, _ := fixture.Score(side, matchup.HomeGoals, matchup.AwayGoals)
				facts := fantasy.PlayerFacts{
					GoalsScored:   goalsFor,
					GoalsConceded: goalsAgainst,
					IsMOTM:        item.MOTMPlayerID != "" && item.MOTMPlayerID == playerID,
				}
				base := fantasy.BasePoints(facts, table)

				for _, entry := range entriesByPlayer[playerID] {
					multiplier := fantasy.MultiplierFor(entry)
					record := fantasy.PlayerPointsRecord{
						TeamID:      entry.TeamID,
						PlayerID:    playerID,
						FixtureID:   item.ID,
						Round:       item.Round,
						Goals:       facts.GoalsScored,
						Concedes:    facts.GoalsConceded,
						CleanSheet:  facts.CleanSheet(),
						MOTM:        facts.IsMOTM,
						Result:      facts.Result(),
						BasePoints:  base,
						Multiplier:  multiplier,
						TotalPoints: fantasy.ApplyMultiplier(base, multiplier),
						CreatedAt:   now,
					}
					if _, dup := seen[record.Key()]; dup {
						summary.Duplicates++
						continue
					}
					seen[record.Key()] = struct{}{}
					records = append(records, record)
				}
			}
		}
	}

	written, err := s.fantasyRepo.InsertPlayerPoints(ctx, records)
	if err != nil {
		return PlayerPointsSummary{}, fmt.Errorf("insert player points league=%s: %w", league.ID, err)
	}
	summary.Records = len(records)
	summary.Written = written
	summary.Duplicates += len(records) - written

	span.SetAttributes(attribute.String("league.id", league.ID), attribute.Int("records", written))
	return summary, nil
}

// RecalculateTeamBonuses resets passive points and re-credits rule-driven
// bonuses for both real teams of every completed fixture.
func (s *FantasyScoringService) RecalculateTeamBonuses(ctx context.Context, league fantasy.League) (TeamBonusSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FantasyScoringService.RecalculateTeamBonuses")
	defer span.End()

	rules, err := s.ruleRepo.ListByLeague(ctx, league.ID)
	if err != nil {
		return TeamBonusSummary{}, fmt.Errorf("list scoring rules league=%s: %w", league.ID, err)
	}
	teamRules := scoringrule.Active(rules, scoringrule.TargetTeam)

	fixtures, err := s.fixtureRepo.ListCompletedBySeason(ctx, league.SeasonID)
	if err != nil {
		return TeamBonusSummary{}, fmt.Errorf("list completed fixtures season=%s: %w", league.SeasonID, err)
	}
	teams, err := s.fantasyRepo.ListTeamsByLeague(ctx, league.ID)
	if err != nil {
		return TeamBonusSummary{}, fmt.Errorf("list fantasy teams league=%s: %w", league.ID, err)
	}

	if err := s.fantasyRepo.ResetTeamBonuses(ctx, league.ID); err != nil {
		return TeamBonusSummary{}, fmt.Errorf("reset team bonuses league=%s: %w", league.ID, err)
	}

	summary := TeamBonusSummary{Fixtures: len(fixtures)}
	ignored := make(map[string]struct{})
	now := s.now().UTC()

	for _, item := range fixtures {
		sides := []struct {
			side       fixture.Side
			realTeamID string
		}{
			{side: fixture.SideHome, realTeamID: item.HomeTeamID},
			{side: fixture.SideAway, realTeamID: item.AwayTeamID},
		}

		for _, side := range sides {
			goalsFor, goalsAgainst, ok := fixture.Score(side.side, item.HomeScore, item.AwayScore)
			if !ok {
				continue
			}
			breakdown, total := fantasy.EvaluateTeamBonus(fantasy.TeamFacts{
				GoalsFor:     goalsFor,
				GoalsAgainst: goalsAgainst,
			}, teamRules)
			for _, ruleType := range breakdown.Ignored {
				ignored[ruleType] = struct{}{}
			}
			if total == 0 {
				summary.ZeroBonus++
				continue
			}

			for _, team := range teams {
				if !team.Supports(side.realTeamID) {
					continue
				}

				recordID, err := s.ids.NewID()
				if err != nil {
					return TeamBonusSummary{}, fmt.Errorf("generate bonus id: %w", err)
				}
				credited, err := s.fantasyRepo.CreditTeamBonus(ctx, fantasy.TeamBonusRecord{
					ID:         recordID,
					LeagueID:   league.ID,
					TeamID:     team.ID,
					RealTeamID: side.realTeamID,
					FixtureID:  item.ID,
					Round:      item.Round,
					Breakdown:  breakdown,
					TotalBonus: total,
					CreatedAt:  now,
				})
				if err != nil {
					return TeamBonusSummary{}, fmt.Errorf("credit team bonus league=%s team=%s fixture=%s: %w", league.ID, team.ID, item.ID, err)
				}
				if credited {
					summary.Credited++
				} else {
					summary.AlreadyGiven++
				}
			}
		}
	}

	for ruleType := range ignored {
		summary.IgnoredRules = append(summary.IgnoredRules, ruleType)
	}
	sort.Strings(summary.IgnoredRules)
	if len(summary.IgnoredRules) > 0 {
		s.logger.WarnContext(ctx, "unknown team rule types ignored", "league_id", league.ID, "rule_types", summary.IgnoredRules)
	}

	span.SetAttributes(attribute.String("league.id", league.ID), attribute.Int("credited", summary.Credited))
	return summary, nil
}

// AggregateAndRank recomputes squad totals and team points and stores the
// ranked standings.
func (s *FantasyScoringService) AggregateAndRank(ctx context.Context, league fantasy.League) ([]fantasy.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FantasyScoringService.AggregateAndRank")
	defer span.End()

	teams, err := s.fantasyRepo.ListTeamsByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list fantasy teams league=%s: %w", league.ID, err)
	}
	entries, err := s.fantasyRepo.ListSquadEntriesByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list squad entries league=%s: %w", league.ID, err)
	}
	points, err := s.fantasyRepo.ListPlayerPointsByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list player points league=%s: %w", league.ID, err)
	}
	bonuses, err := s.fantasyRepo.ListTeamBonusesByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list team bonuses league=%s: %w", league.ID, err)
	}
	grants, err := s.fantasyRepo.ListBonusGrantsByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("list bonus grants league=%s: %w", league.ID, err)
	}

	ranked, totals := fantasy.Aggregate(league.ID, fantasy.AggregateInput{
		Teams:        teams,
		Entries:      entries,
		PlayerPoints: points,
		TeamBonuses:  bonuses,
		Grants:       grants,
	})
	now := s.now().UTC()
	for idx := range ranked {
		ranked[idx].UpdatedAt = now
	}

	if err := s.fantasyRepo.SaveStandings(ctx, league.ID, ranked, totals); err != nil {
		return nil, fmt.Errorf("save standings league=%s: %w", league.ID, err)
	}

	span.SetAttributes(attribute.String("league.id", league.ID), attribute.Int("teams", len(ranked)))
	return ranked, nil
}

// Standings returns the stored standings of one league in rank order.
func (s *FantasyScoringService) Standings(ctx context.Context, leagueID string) (fantasy.League, []fantasy.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FantasyScoringService.Standings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fantasy.League{}, nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	league, exists, err := s.fantasyRepo.GetLeague(ctx, leagueID)
	if err != nil {
		return fantasy.League{}, nil, fmt.Errorf("get fantasy league=%s: %w", leagueID, err)
	}
	if !exists {
		return fantasy.League{}, nil, fmt.Errorf("%w: fantasy league=%s", ErrNotFound, leagueID)
	}

	teams, err := s.fantasyRepo.ListTeamsByLeague(ctx, leagueID)
	if err != nil {
		return fantasy.League{}, nil, fmt.Errorf("list fantasy teams league=%s: %w", leagueID, err)
	}
	return league, fantasy.RankTeams(teams), nil
}
