package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
)

const (
	SeedSeasonID        = "season-2026"
	SeedFantasyLeagueID = "fl-liga-komunitas"
)

func SeedPlayerSeasons() []playerseason.Record {
	updatedAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	record := func(playerID, name, teamID, auction string, star int) playerseason.Record {
		value := decimal.RequireFromString(auction)
		return playerseason.Record{
			PlayerID:       playerID,
			SeasonID:       SeedSeasonID,
			Name:           name,
			TeamID:         teamID,
			AuctionValue:   value,
			StarRating:     star,
			SalaryPerMatch: playerseason.CalculateSalary(value, star),
			UpdatedAt:      updatedAt,
		}
	}

	return []playerseason.Record{
		record("pl-andri", "Andri Saputra", "persija", "1500", 8),
		record("pl-bayu", "Bayu Nugraha", "persija", "900", 5),
		record("pl-cahya", "Cahya Pratama", "persib", "1200", 7),
		record("pl-dimas", "Dimas Wijaya", "persib", "650", 4),
		record("pl-eko", "Eko Prasetyo", "persebaya", "1100", 6),
		record("pl-fajar", "Fajar Hidayat", "persebaya", "480", 3),
		record("pl-gilang", "Gilang Ramadhan", "baliutd", "1750", 9),
		record("pl-hendra", "Hendra Kusuma", "baliutd", "700", 4),
	}
}

func SeedBudgets() []budget.TeamSeasonBudget {
	updatedAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return []budget.TeamSeasonBudget{
		{
			TeamID: "persija", SeasonID: SeedSeasonID, DualCurrency: true,
			RealPlayerBudget: decimal.NewFromInt(5000), FootballBudget: decimal.NewFromInt(2000),
			UpdatedAt: updatedAt,
		},
		{
			TeamID: "persib", SeasonID: SeedSeasonID, DualCurrency: true,
			RealPlayerBudget: decimal.NewFromInt(4500), FootballBudget: decimal.NewFromInt(2500),
			UpdatedAt: updatedAt,
		},
		{TeamID: "persebaya", SeasonID: SeedSeasonID, Budget: decimal.NewFromInt(4000), UpdatedAt: updatedAt},
		{TeamID: "baliutd", SeasonID: SeedSeasonID, Budget: decimal.NewFromInt(300), UpdatedAt: updatedAt},
	}
}

func SeedFixtures() []fixture.Fixture {
	goals := func(v int) *int { return &v }

	return []fixture.Fixture{
		{
			ID: "fx-001", SeasonID: SeedSeasonID, Round: 1,
			HomeTeamID: "persija", AwayTeamID: "persib",
			HomeScore: goals(5), AwayScore: goals(2),
			MOTMPlayerID: "pl-andri",
			Status:       fixture.StatusFinished,
			KickoffAt:    time.Date(2026, 1, 17, 13, 0, 0, 0, time.UTC),
			Matchups: []fixture.Matchup{
				{HomePlayerID: "pl-andri", AwayPlayerID: "pl-cahya", HomeGoals: goals(3), AwayGoals: goals(1)},
				{HomePlayerID: "pl-bayu", AwayPlayerID: "pl-dimas", HomeGoals: goals(2), AwayGoals: goals(1)},
			},
		},
		{
			ID: "fx-002", SeasonID: SeedSeasonID, Round: 1,
			HomeTeamID: "persebaya", AwayTeamID: "baliutd",
			HomeScore: goals(0), AwayScore: goals(0),
			Status:    fixture.StatusFinished,
			KickoffAt: time.Date(2026, 1, 17, 15, 30, 0, 0, time.UTC),
			Matchups: []fixture.Matchup{
				{HomePlayerID: "pl-eko", AwayPlayerID: "pl-gilang", HomeGoals: goals(0), AwayGoals: goals(0)},
				{HomePlayerID: "pl-fajar", AwayPlayerID: "pl-hendra", HomeGoals: goals(0), AwayGoals: goals(0)},
			},
		},
		{
			ID: "fx-003", SeasonID: SeedSeasonID, Round: 2,
			HomeTeamID: "persib", AwayTeamID: "baliutd",
			Status:    fixture.StatusScheduled,
			KickoffAt: time.Date(2026, 1, 24, 13, 0, 0, 0, time.UTC),
			Matchups: []fixture.Matchup{
				{HomePlayerID: "pl-cahya", AwayPlayerID: "pl-gilang"},
				{HomePlayerID: "pl-dimas", AwayPlayerID: "pl-hendra"},
			},
		},
	}
}

func SeedScoringRules() []scoringrule.Rule {
	rule := func(id string, ruleType scoringrule.RuleType, target scoringrule.Target, points int) scoringrule.Rule {
		return scoringrule.Rule{
			ID:          id,
			LeagueID:    SeedFantasyLeagueID,
			RuleType:    ruleType,
			AppliesTo:   target,
			PointsValue: points,
			IsActive:    true,
		}
	}

	return []scoringrule.Rule{
		rule("sr-p-goal", scoringrule.GoalsScored, scoringrule.TargetPlayer, 4),
		rule("sr-p-cs", scoringrule.CleanSheet, scoringrule.TargetPlayer, 3),
		rule("sr-p-motm", scoringrule.MOTM, scoringrule.TargetPlayer, 5),
		rule("sr-p-win", scoringrule.Win, scoringrule.TargetPlayer, 3),
		rule("sr-p-draw", scoringrule.Draw, scoringrule.TargetPlayer, 1),
		rule("sr-p-played", scoringrule.MatchPlayed, scoringrule.TargetPlayer, 1),
		rule("sr-p-hattrick", scoringrule.HatTrick, scoringrule.TargetPlayer, 6),
		rule("sr-p-concede4", scoringrule.Concedes4, scoringrule.TargetPlayer, -2),
		rule("sr-t-win", scoringrule.Win, scoringrule.TargetTeam, 3),
		rule("sr-t-draw", scoringrule.Draw, scoringrule.TargetTeam, 1),
		rule("sr-t-loss", scoringrule.Loss, scoringrule.TargetTeam, -1),
		rule("sr-t-cs", scoringrule.CleanSheet, scoringrule.TargetTeam, 2),
		rule("sr-t-bigwin", scoringrule.BigWin, scoringrule.TargetTeam, 2),
		rule("sr-t-scored4", scoringrule.Scored4, scoringrule.TargetTeam, 1),
		rule("sr-t-concede4", scoringrule.Concedes4, scoringrule.TargetTeam, -2),
	}
}

func SeedFantasy() FantasySnapshot {
	return FantasySnapshot{
		Leagues: []fantasy.League{
			{ID: SeedFantasyLeagueID, SeasonID: SeedSeasonID, Name: "Liga Komunitas"},
		},
		Teams: []fantasy.Team{
			{ID: "ft-garuda", LeagueID: SeedFantasyLeagueID, Name: "Garuda Muda", SupportedTeamID: fantasy.SupportedTeamKey("persija", SeedFantasyLeagueID)},
			{ID: "ft-maung", LeagueID: SeedFantasyLeagueID, Name: "Maung Lovers", SupportedTeamID: fantasy.SupportedTeamKey("persib", SeedFantasyLeagueID)},
			{ID: "ft-bajul", LeagueID: SeedFantasyLeagueID, Name: "Bajul Ijo", SupportedTeamID: fantasy.SupportedTeamKey("persebaya", SeedFantasyLeagueID)},
		},
		Entries: []fantasy.SquadEntry{
			{TeamID: "ft-garuda", PlayerID: "pl-andri", PlayerName: "Andri Saputra", IsCaptain: true},
			{TeamID: "ft-garuda", PlayerID: "pl-eko", PlayerName: "Eko Prasetyo", IsViceCaptain: true},
			{TeamID: "ft-garuda", PlayerID: "pl-dimas", PlayerName: "Dimas Wijaya"},
			{TeamID: "ft-maung", PlayerID: "pl-cahya", PlayerName: "Cahya Pratama", IsCaptain: true},
			{TeamID: "ft-maung", PlayerID: "pl-gilang", PlayerName: "Gilang Ramadhan", IsViceCaptain: true},
			{TeamID: "ft-maung", PlayerID: "pl-bayu", PlayerName: "Bayu Nugraha"},
			{TeamID: "ft-bajul", PlayerID: "pl-fajar", PlayerName: "Fajar Hidayat", IsCaptain: true},
			{TeamID: "ft-bajul", PlayerID: "pl-hendra", PlayerName: "Hendra Kusuma"},
		},
		Grants: []fantasy.BonusGrant{
			{ID: "grant-001", TargetType: fantasy.GrantTargetPlayer, TargetID: "pl-fajar", LeagueID: SeedFantasyLeagueID, Points: 2, Reason: "fair play award"},
			{ID: "grant-002", TargetType: fantasy.GrantTargetTeam, TargetID: fantasy.SupportedTeamKey("persebaya", SeedFantasyLeagueID), LeagueID: SeedFantasyLeagueID, Points: 3, Reason: "supporter turnout"},
		},
	}
}
