package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "points").
		From("player_season_records").
		Where(Eq("season_id", "s-2026"), IsNull("deleted_at")).
		OrderBy("player_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, points FROM player_season_records WHERE season_id = $1 AND deleted_at IS NULL ORDER BY player_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "s-2026" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("salary_transactions").
		Columns("id", "fixture_id").
		Values("tx-1", "fx-1").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO salary_transactions (id, fixture_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "tx-1" || args[1] != "fx-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("team_season_budgets").
		Set("spent", 12.5).
		SetExpr("version", "version + 1").
		Where(Eq("id", "t1_s1"), Eq("version", int64(4))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE team_season_budgets SET spent = $1, version = version + 1 WHERE id = $2 AND version = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[1] != "t1_s1" || args[2] != int64(4) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("fantasy_player_points").
		Where(In("team_id", []any{"ft-1", "ft-2"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM fantasy_player_points WHERE team_id IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("fantasy_player_points").ToSQL(); err == nil {
		t.Fatalf("expected unconditioned delete to be rejected")
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		ID     string `db:"id"`
		Points int    `db:"points"`
		skip   string
	}

	query, args, err := InsertModels("fantasy_player_points", []row{
		{ID: "a", Points: 10},
		{ID: "b", Points: 20},
	}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO fantasy_player_points (id, points) VALUES ($1, $2), ($3, $4) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "b" || args[3] != 20 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
