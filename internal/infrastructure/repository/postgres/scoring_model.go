package postgres

type scoringRuleTableModel struct {
	PublicID    string `db:"public_id"`
	LeagueID    string `db:"league_public_id"`
	RuleType    string `db:"rule_type"`
	AppliesTo   string `db:"applies_to"`
	PointsValue int    `db:"points_value"`
	IsActive    bool   `db:"is_active"`
}

type scoringRuleInsertModel struct {
	PublicID    string `db:"public_id"`
	LeagueID    string `db:"league_public_id"`
	RuleType    string `db:"rule_type"`
	AppliesTo   string `db:"applies_to"`
	PointsValue int    `db:"points_value"`
	IsActive    bool   `db:"is_active"`
}
