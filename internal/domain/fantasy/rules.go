package fantasy

import (
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	"github.com/shopspring/decimal"
)

const (
	MultiplierDefault     = 100
	MultiplierViceCaptain = 150
	MultiplierCaptain     = 200
)

const (
	hatTrickGoals     = 3
	heavyConcedeGoals = 4
	bigWinMargin      = 3
	hugeWinMargin     = 5
	narrowWinMargin   = 1
)

// PlayerFacts is one player's side of a completed matchup.
type PlayerFacts struct {
	GoalsScored   int
	GoalsConceded int
	IsMOTM        bool
}

func (f PlayerFacts) Result() MatchResult {
	return ResultFor(f.GoalsScored, f.GoalsConceded)
}

func (f PlayerFacts) CleanSheet() bool {
	return f.GoalsConceded == 0
}

// BasePoints prices a matchup with the league's player rules. Absent rules
// contribute nothing.
func BasePoints(f PlayerFacts, rules scoringrule.Table) int {
	points := f.GoalsScored * rules.Points(scoringrule.GoalsScored)
	if f.CleanSheet() {
		points += rules.Points(scoringrule.CleanSheet)
	}
	if f.IsMOTM {
		points += rules.Points(scoringrule.MOTM)
	}
	switch f.Result() {
	case ResultWin:
		points += rules.Points(scoringrule.Win)
	case ResultDraw:
		points += rules.Points(scoringrule.Draw)
	}
	points += rules.Points(scoringrule.MatchPlayed)
	if f.GoalsScored >= hatTrickGoals {
		points += rules.Points(scoringrule.HatTrick)
	}
	if f.GoalsConceded >= heavyConcedeGoals {
		points += rules.Points(scoringrule.Concedes4)
	}
	return points
}

// MultiplierFor returns the entry's multiplier as a percentage. Captain wins
// over vice-captain when both flags are set.
func MultiplierFor(entry SquadEntry) int {
	switch {
	case entry.IsCaptain:
		return MultiplierCaptain
	case entry.IsViceCaptain:
		return MultiplierViceCaptain
	default:
		return MultiplierDefault
	}
}

// ApplyMultiplier computes base * multiplier/100 in decimal and rounds half
// away from zero.
func ApplyMultiplier(base, multiplier int) int {
	value := decimal.NewFromInt(int64(base)).
		Mul(decimal.NewFromInt(int64(multiplier))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return int(value.IntPart())
}

// TeamFacts is one real team's side of a completed fixture.
type TeamFacts struct {
	GoalsFor     int
	GoalsAgainst int
}

func (f TeamFacts) Result() MatchResult {
	return ResultFor(f.GoalsFor, f.GoalsAgainst)
}

func (f TeamFacts) Margin() int {
	return f.GoalsFor - f.GoalsAgainst
}

func (f TeamFacts) CleanSheet() bool {
	return f.GoalsAgainst == 0
}

type teamPredicate func(TeamFacts) bool

func won(f TeamFacts) bool { return f.Result() == ResultWin }

func conceded(n int) teamPredicate {
	return func(f TeamFacts) bool { return f.GoalsAgainst >= n }
}

func scored(n int) teamPredicate {
	return func(f TeamFacts) bool { return f.GoalsFor >= n }
}

// teamBonusPredicates is the full set of team-scoped rule types. Threshold
// rules are independent, so a 6-goal concession fires both the 4+ and 6+ rules.
var teamBonusPredicates = map[scoringrule.RuleType]teamPredicate{
	scoringrule.Win:        won,
	scoringrule.Draw:       func(f TeamFacts) bool { return f.Result() == ResultDraw },
	scoringrule.Loss:       func(f TeamFacts) bool { return f.Result() == ResultLoss },
	scoringrule.CleanSheet: TeamFacts.CleanSheet,
	scoringrule.Concedes4:  conceded(4),
	scoringrule.Concedes6:  conceded(6),
	scoringrule.Concedes8:  conceded(8),
	scoringrule.Concedes10: conceded(10),
	scoringrule.Concedes15: conceded(15),
	scoringrule.Scored4:    scored(4),
	scoringrule.Scored6:    scored(6),
	scoringrule.Scored8:    scored(8),
	scoringrule.Scored10:   scored(10),
	scoringrule.Scored15:   scored(15),
	scoringrule.BigWin:     func(f TeamFacts) bool { return won(f) && f.Margin() >= bigWinMargin },
	scoringrule.HugeWin:    func(f TeamFacts) bool { return won(f) && f.Margin() >= hugeWinMargin },
	scoringrule.NarrowWin:  func(f TeamFacts) bool { return won(f) && f.Margin() == narrowWinMargin },
	scoringrule.ShutoutWin: func(f TeamFacts) bool { return won(f) && f.CleanSheet() },
}

// IsTeamRuleType reports whether the bonus engine knows how to evaluate t.
func IsTeamRuleType(t scoringrule.RuleType) bool {
	_, ok := teamBonusPredicates[t]
	return ok
}

// EvaluateTeamBonus runs every active team rule against facts. Rule types
// without a predicate are listed in Ignored and never score.
func EvaluateTeamBonus(facts TeamFacts, rules []scoringrule.Rule) (BonusBreakdown, int) {
	breakdown := BonusBreakdown{
		GoalsFor:     facts.GoalsFor,
		GoalsAgainst: facts.GoalsAgainst,
		Result:       facts.Result(),
		Rules:        make([]FiredRule, 0),
	}

	total := 0
	for _, rule := range scoringrule.Active(rules, scoringrule.TargetTeam) {
		predicate, ok := teamBonusPredicates[rule.RuleType]
		if !ok {
			breakdown.Ignored = append(breakdown.Ignored, string(rule.RuleType))
			continue
		}
		if !predicate(facts) {
			continue
		}
		breakdown.Rules = append(breakdown.Rules, FiredRule{
			RuleType: string(rule.RuleType),
			Points:   rule.PointsValue,
		})
		total += rule.PointsValue
	}

	return breakdown, total
}
