package standings

import (
	"testing"

	"github.com/Dosada05/pickleball-tournament/models"
)

func newTeams(ids ...string) []models.Team {
	teams := make([]models.Team, len(ids))
	for i, id := range ids {
		teams[i] = models.Team{ID: id, Name: id}
	}
	return teams
}

func stats(teams []models.Team, id string) models.Stats {
	for _, t := range teams {
		if t.ID == id {
			return t.Stats
		}
	}
	return models.Stats{}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name  string
		score models.Score
		wantA models.Stats
		wantB models.Stats
	}{
		{"A wins", models.Score{A: 11, B: 5}, models.Stats{Played: 1, Win: 1, PointDiff: 6, RankingPoint: 1}, models.Stats{Played: 1, Lose: 1, PointDiff: -6}},
		{"B wins", models.Score{A: 3, B: 11}, models.Stats{Played: 1, Lose: 1, PointDiff: -8}, models.Stats{Played: 1, Win: 1, PointDiff: 8, RankingPoint: 1}},
		{"tie", models.Score{A: 7, B: 7}, models.Stats{Played: 1}, models.Stats{Played: 1}},
		{"zero tie", models.Score{A: 0, B: 0}, models.Stats{Played: 1}, models.Stats{Played: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := Outcome(tt.score)
			if a != tt.wantA {
				t.Errorf("team A: expected %+v, got %+v", tt.wantA, a)
			}
			if b != tt.wantB {
				t.Errorf("team B: expected %+v, got %+v", tt.wantB, b)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	teams := newTeams("X", "Y")
	m := models.Match{ID: "X-Y", TeamAID: "X", TeamBID: "Y"}

	got := Apply(teams, m, models.Score{A: 11, B: 5})

	if teams[0].Stats != (models.Stats{}) || teams[1].Stats != (models.Stats{}) {
		t.Errorf("Apply mutated its input: %+v", teams)
	}
	if s := stats(got, "X"); s != (models.Stats{Played: 1, Win: 1, PointDiff: 6, RankingPoint: 1}) {
		t.Errorf("X: unexpected stats %+v", s)
	}
	if s := stats(got, "Y"); s != (models.Stats{Played: 1, Lose: 1, PointDiff: -6}) {
		t.Errorf("Y: unexpected stats %+v", s)
	}
}

func TestApplyRevertRoundTrip(t *testing.T) {
	teams := newTeams("A", "B", "C")
	teams[2].Stats = models.Stats{Played: 4, Win: 3, Lose: 1, PointDiff: 12, RankingPoint: 3}
	m := models.Match{ID: "A-B", TeamAID: "A", TeamBID: "B"}

	scores := []models.Score{{A: 11, B: 0}, {A: 0, B: 11}, {A: 5, B: 5}, {A: 11, B: 9}, {A: 0, B: 0}}
	current := teams
	for i := 0; i < 50; i++ {
		score := scores[i%len(scores)]
		current = Revert(Apply(current, m, score), m, score)
	}

	for i := range teams {
		if current[i] != teams[i] {
			t.Errorf("team %s drifted: expected %+v, got %+v", teams[i].ID, teams[i], current[i])
		}
	}
}

func TestApplySkipsMissingTeam(t *testing.T) {
	teams := newTeams("A")
	m := models.Match{ID: "A-B", TeamAID: "A", TeamBID: "B"}

	got := Apply(teams, m, models.Score{A: 2, B: 11})
	if len(got) != 1 {
		t.Fatalf("expected 1 team, got %d", len(got))
	}
	if s := stats(got, "A"); s != (models.Stats{Played: 1, Lose: 1, PointDiff: -9}) {
		t.Errorf("A: unexpected stats %+v", s)
	}
}

func TestUpdateScoreEqualsRecalculation(t *testing.T) {
	pairs := []struct{ first, second models.Score }{
		{models.Score{A: 11, B: 3}, models.Score{A: 4, B: 11}},
		{models.Score{A: 0, B: 0}, models.Score{A: 11, B: 10}},
		{models.Score{A: 11, B: 9}, models.Score{A: 11, B: 9}},
		{models.Score{A: 6, B: 11}, models.Score{A: 8, B: 8}},
	}

	for _, p := range pairs {
		teams := newTeams("A", "B")
		m := models.Match{ID: "A-B", TeamAID: "A", TeamBID: "B"}

		teams, m = UpdateScore(teams, m, p.first)
		teams, m = UpdateScore(teams, m, p.second)

		expected := RecalculateAll(teams, []models.Match{m})
		if diff := Diff(teams, expected); len(diff) != 0 {
			t.Errorf("%+v then %+v: incremental stats differ from recalculation: %+v", p.first, p.second, diff)
		}
		if score, _ := m.Score(); score != p.second {
			t.Errorf("expected stored score %+v, got %+v", p.second, score)
		}
	}
}

func TestClearScore(t *testing.T) {
	teams := newTeams("X", "Y")
	m := models.Match{ID: "X-Y", TeamAID: "X", TeamBID: "Y"}

	if _, _, err := ClearScore(teams, m); err != ErrMatchUnplayed {
		t.Fatalf("expected ErrMatchUnplayed for an unplayed match, got %v", err)
	}

	teams, m = UpdateScore(teams, m, models.Score{A: 11, B: 5})
	cleared, m, err := ClearScore(teams, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IsPlayed() || m.ScoreA != nil || m.ScoreB != nil {
		t.Errorf("expected both scores unset, got %+v", m)
	}
	for _, team := range cleared {
		if team.Stats != (models.Stats{}) {
			t.Errorf("team %s: expected zero stats after clear, got %+v", team.ID, team.Stats)
		}
	}
}

func TestRecalculateAll(t *testing.T) {
	teams := newTeams("X", "Y", "Z")
	teams[0].Stats = models.Stats{Played: 9, Win: 9, PointDiff: 99, RankingPoint: 9}

	a, b := 11, 5
	c, d := 11, 11
	matches := []models.Match{
		{ID: "X-Y", TeamAID: "X", TeamBID: "Y", ScoreA: &a, ScoreB: &b},
		{ID: "X-Z", TeamAID: "X", TeamBID: "Z"},
		{ID: "Y-Z", TeamAID: "Y", TeamBID: "Z", ScoreA: &c, ScoreB: &d},
	}

	first := RecalculateAll(teams, matches)
	second := RecalculateAll(first, matches)

	want := map[string]models.Stats{
		"X": {Played: 1, Win: 1, PointDiff: 6, RankingPoint: 1},
		"Y": {Played: 2, Lose: 1, PointDiff: -6},
		"Z": {Played: 1},
	}
	for id, w := range want {
		if s := stats(first, id); s != w {
			t.Errorf("%s: expected %+v, got %+v", id, w, s)
		}
	}
	if diff := Diff(first, second); len(diff) != 0 {
		t.Errorf("recalculation is not idempotent: %+v", diff)
	}
	if teams[0].Played != 9 {
		t.Errorf("RecalculateAll mutated its input")
	}
}

func TestDiff(t *testing.T) {
	actual := newTeams("A", "B")
	actual[0].Stats = models.Stats{Played: 2}
	expected := newTeams("A", "B")
	expected[0].Stats = models.Stats{Played: 1}

	drifts := Diff(actual, expected)
	if len(drifts) != 1 || drifts[0].TeamID != "A" {
		t.Fatalf("expected a single drift for A, got %+v", drifts)
	}
	if drifts[0].Actual.Played != 2 || drifts[0].Expected.Played != 1 {
		t.Errorf("unexpected drift values: %+v", drifts[0])
	}
}
