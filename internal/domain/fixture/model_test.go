package fixture

import "testing"

func intPtr(v int) *int { return &v }

func TestFixtureCompleted(t *testing.T) {
	cases := []struct {
		name string
		item Fixture
		want bool
	}{
		{name: "finished with scores", item: Fixture{Status: "ft", HomeScore: intPtr(2), AwayScore: intPtr(0)}, want: true},
		{name: "finished without score", item: Fixture{Status: StatusFinished, HomeScore: intPtr(2)}, want: false},
		{name: "live", item: Fixture{Status: StatusLive, HomeScore: intPtr(1), AwayScore: intPtr(1)}, want: false},
		{name: "empty status", item: Fixture{HomeScore: intPtr(1), AwayScore: intPtr(1)}, want: false},
	}

	for _, tc := range cases {
		if got := tc.item.Completed(); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestScore(t *testing.T) {
	gf, ga, ok := Score(SideAway, intPtr(3), intPtr(1))
	if !ok || gf != 1 || ga != 3 {
		t.Fatalf("unexpected away score: %d-%d ok=%v", gf, ga, ok)
	}
	if _, _, ok := Score(SideHome, nil, intPtr(1)); ok {
		t.Fatalf("missing home goals must not be ok")
	}
}
