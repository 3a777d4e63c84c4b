package fantasy

import (
	"testing"

	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
)

func playerRules() scoringrule.Table {
	return scoringrule.Table{
		scoringrule.GoalsScored: 4,
		scoringrule.CleanSheet:  3,
		scoringrule.MOTM:        5,
		scoringrule.Win:         3,
		scoringrule.Draw:        1,
		scoringrule.MatchPlayed: 1,
		scoringrule.HatTrick:    6,
		scoringrule.Concedes4:   -2,
	}
}

func TestBasePoints(t *testing.T) {
	rules := playerRules()

	tests := []struct {
		name  string
		facts PlayerFacts
		want  int
	}{
		{
			name:  "two goals clean sheet motm win",
			facts: PlayerFacts{GoalsScored: 2, GoalsConceded: 0, IsMOTM: true},
			want:  2*4 + 3 + 5 + 3 + 1,
		},
		{
			name:  "hat trick draw",
			facts: PlayerFacts{GoalsScored: 3, GoalsConceded: 3},
			want:  3*4 + 1 + 1 + 6,
		},
		{
			name:  "heavy loss",
			facts: PlayerFacts{GoalsScored: 0, GoalsConceded: 5},
			want:  1 - 2,
		},
		{
			name:  "goalless draw keeps clean sheet",
			facts: PlayerFacts{},
			want:  3 + 1 + 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BasePoints(tc.facts, rules); got != tc.want {
				t.Fatalf("unexpected base points: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestBasePoints_MissingRulesAreZero(t *testing.T) {
	got := BasePoints(PlayerFacts{GoalsScored: 4, GoalsConceded: 0, IsMOTM: true}, scoringrule.Table{
		scoringrule.GoalsScored: 2,
	})
	if got != 8 {
		t.Fatalf("unexpected base points with sparse rules: got=%d want=8", got)
	}
}

func TestMultiplierAndRounding(t *testing.T) {
	if got := ApplyMultiplier(10, MultiplierFor(SquadEntry{IsCaptain: true})); got != 20 {
		t.Fatalf("captain: got=%d want=20", got)
	}
	if got := ApplyMultiplier(10, MultiplierFor(SquadEntry{IsViceCaptain: true})); got != 15 {
		t.Fatalf("vice captain: got=%d want=15", got)
	}
	if got := ApplyMultiplier(10, MultiplierFor(SquadEntry{})); got != 10 {
		t.Fatalf("regular: got=%d want=10", got)
	}
	if got := ApplyMultiplier(7, MultiplierViceCaptain); got != 11 {
		t.Fatalf("10.5 must round up: got=%d want=11", got)
	}
	if got := ApplyMultiplier(-3, MultiplierViceCaptain); got != -5 {
		t.Fatalf("-4.5 must round away from zero: got=%d want=-5", got)
	}
	if got := MultiplierFor(SquadEntry{IsCaptain: true, IsViceCaptain: true}); got != MultiplierCaptain {
		t.Fatalf("captain flag must win, got=%d", got)
	}
}

func teamRule(ruleType scoringrule.RuleType, points int) scoringrule.Rule {
	return scoringrule.Rule{RuleType: ruleType, AppliesTo: scoringrule.TargetTeam, PointsValue: points, IsActive: true}
}

func TestEvaluateTeamBonus_AdditiveThresholds(t *testing.T) {
	rules := []scoringrule.Rule{
		teamRule(scoringrule.Loss, -1),
		teamRule(scoringrule.Concedes4, -2),
		teamRule(scoringrule.Concedes6, -3),
		teamRule(scoringrule.Concedes8, -4),
	}

	breakdown, total := EvaluateTeamBonus(TeamFacts{GoalsFor: 1, GoalsAgainst: 6}, rules)
	if total != -6 {
		t.Fatalf("unexpected total: got=%d want=-6", total)
	}
	if len(breakdown.Rules) != 3 {
		t.Fatalf("unexpected fired rules: %+v", breakdown.Rules)
	}
	if breakdown.Result != ResultLoss {
		t.Fatalf("unexpected result: %s", breakdown.Result)
	}
}

func TestEvaluateTeamBonus_MarginRules(t *testing.T) {
	rules := []scoringrule.Rule{
		teamRule(scoringrule.Win, 3),
		teamRule(scoringrule.BigWin, 2),
		teamRule(scoringrule.HugeWin, 4),
		teamRule(scoringrule.NarrowWin, 1),
		teamRule(scoringrule.ShutoutWin, 2),
		teamRule(scoringrule.CleanSheet, 1),
		teamRule(scoringrule.Scored4, 1),
	}

	tests := []struct {
		name  string
		facts TeamFacts
		want  int
	}{
		{name: "narrow win", facts: TeamFacts{GoalsFor: 2, GoalsAgainst: 1}, want: 3 + 1},
		{name: "big shutout win", facts: TeamFacts{GoalsFor: 3, GoalsAgainst: 0}, want: 3 + 2 + 2 + 1},
		{name: "huge win", facts: TeamFacts{GoalsFor: 6, GoalsAgainst: 1}, want: 3 + 2 + 4 + 1},
		{name: "goalless draw", facts: TeamFacts{}, want: 1},
		{name: "loss", facts: TeamFacts{GoalsFor: 0, GoalsAgainst: 2}, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, got := EvaluateTeamBonus(tc.facts, rules); got != tc.want {
				t.Fatalf("unexpected bonus: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestEvaluateTeamBonus_IgnoresUnknownAndInactive(t *testing.T) {
	rules := []scoringrule.Rule{
		teamRule(scoringrule.Win, 3),
		teamRule("own_goal_bonanza", 50),
		{RuleType: scoringrule.BigWin, AppliesTo: scoringrule.TargetTeam, PointsValue: 9, IsActive: false},
		{RuleType: scoringrule.GoalsScored, AppliesTo: scoringrule.TargetPlayer, PointsValue: 4, IsActive: true},
	}

	breakdown, total := EvaluateTeamBonus(TeamFacts{GoalsFor: 4, GoalsAgainst: 0}, rules)
	if total != 3 {
		t.Fatalf("unexpected total: got=%d want=3", total)
	}
	if len(breakdown.Ignored) != 1 || breakdown.Ignored[0] != "own_goal_bonanza" {
		t.Fatalf("unexpected ignored rules: %+v", breakdown.Ignored)
	}
	if IsTeamRuleType("own_goal_bonanza") {
		t.Fatalf("unknown rule type must not be registered")
	}
}

func TestTeamSupports(t *testing.T) {
	team := Team{LeagueID: "league-1", SupportedTeamID: SupportedTeamKey("persib", "league-1")}
	if !team.Supports("persib") {
		t.Fatalf("expected league key match")
	}
	if team.Supports("pers") {
		t.Fatalf("partial id must not match")
	}
	if !(Team{SupportedTeamID: "persib"}).Supports("persib") {
		t.Fatalf("expected exact match")
	}
	if team.Supports("") {
		t.Fatalf("empty id must not match")
	}

	underscored := Team{LeagueID: "L", SupportedTeamID: SupportedTeamKey("T1_2", "L")}
	if underscored.Supports("T1") {
		t.Fatalf("real team T1 must not match the key of T1_2")
	}
	if !underscored.Supports("T1_2") {
		t.Fatalf("expected T1_2 to match its own key")
	}
	if (Team{LeagueID: "other", SupportedTeamID: SupportedTeamKey("persib", "league-1")}).Supports("persib") {
		t.Fatalf("key from another league must not match")
	}
}
