package scoringrule

import "strings"

// Target is who a rule awards points to.
type Target string

const (
	TargetPlayer Target = "player"
	TargetTeam   Target = "team"
)

// RuleType is the event a rule prices.
type RuleType string

const (
	GoalsScored RuleType = "goals_scored"
	CleanSheet  RuleType = "clean_sheet"
	MOTM        RuleType = "motm"
	Win         RuleType = "win"
	Draw        RuleType = "draw"
	Loss        RuleType = "loss"
	MatchPlayed RuleType = "match_played"
	HatTrick    RuleType = "hat_trick"
	BigWin      RuleType = "big_win"
	HugeWin     RuleType = "huge_win"
	NarrowWin   RuleType = "narrow_win"
	ShutoutWin  RuleType = "shutout_win"
	Concedes4   RuleType = "concedes_4_plus_goals"
	Concedes6   RuleType = "concedes_6_plus_goals"
	Concedes8   RuleType = "concedes_8_plus_goals"
	Concedes10  RuleType = "concedes_10_plus_goals"
	Concedes15  RuleType = "concedes_15_plus_goals"
	Scored4     RuleType = "scored_4_plus_goals"
	Scored6     RuleType = "scored_6_plus_goals"
	Scored8     RuleType = "scored_8_plus_goals"
	Scored10    RuleType = "scored_10_plus_goals"
	Scored15    RuleType = "scored_15_plus_goals"
)

func NormalizeRuleType(value string) RuleType {
	return RuleType(strings.ToLower(strings.TrimSpace(value)))
}

// Rule is one configurable point value for a league.
type Rule struct {
	ID          string
	LeagueID    string
	RuleType    RuleType
	AppliesTo   Target
	PointsValue int
	IsActive    bool
}

// Table is a lookup of active rule values for one league and target.
type Table map[RuleType]int

// NewTable keeps active rules for target. A later duplicate overrides an earlier one.
func NewTable(rules []Rule, target Target) Table {
	out := make(Table, len(rules))
	for _, rule := range rules {
		if !rule.IsActive || rule.AppliesTo != target {
			continue
		}
		out[rule.RuleType] = rule.PointsValue
	}
	return out
}

// Points returns the configured value, or 0 when the rule is absent.
func (t Table) Points(ruleType RuleType) int {
	return t[ruleType]
}

// Active filters rules down to the active ones for target, preserving order.
func Active(rules []Rule, target Target) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive && rule.AppliesTo == target {
			out = append(out, rule)
		}
	}
	return out
}
