package standings

import (
	"testing"

	"github.com/Dosada05/pickleball-tournament/models"
	"golang.org/x/text/language"
)

func team(id, name string, rankingPoint, pointDiff int) models.Team {
	return models.Team{ID: id, Name: name, Stats: models.Stats{RankingPoint: rankingPoint, PointDiff: pointDiff}}
}

func ids(teams []models.Team) []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankerSort(t *testing.T) {
	r := NewRanker(language.English)

	tests := []struct {
		name  string
		teams []models.Team
		want  []string
	}{
		{
			name:  "ranking points then name",
			teams: []models.Team{team("b", "B", 10, 5), team("a", "A", 10, 5), team("c", "C", 12, 1)},
			want:  []string{"c", "a", "b"},
		},
		{
			name:  "point differential breaks ranking point ties",
			teams: []models.Team{team("a", "A", 2, -3), team("b", "B", 2, 4), team("c", "C", 1, 20)},
			want:  []string{"b", "a", "c"},
		},
		{
			name:  "name ordering is case insensitive",
			teams: []models.Team{team("z", "zeta", 0, 0), team("a", "Alpha", 0, 0), team("b", "beta", 0, 0)},
			want:  []string{"a", "b", "z"},
		},
		{
			name:  "equal names keep input order",
			teams: []models.Team{team("2", "Same", 1, 1), team("1", "Same", 1, 1)},
			want:  []string{"2", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := append([]models.Team(nil), tt.teams...)
			got := ids(r.Sort(tt.teams))
			if !equalIDs(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !equalIDs(ids(tt.teams), ids(input)) {
				t.Errorf("Sort reordered its input")
			}
		})
	}
}

func TestRankerTable(t *testing.T) {
	r := NewRanker(language.English)
	table := r.Table([]models.Team{
		team("a", "A", 0, 0), team("b", "B", 3, 0), team("c", "C", 2, 0), team("d", "D", 1, 0),
	})

	wantIDs := []string{"b", "c", "d", "a"}
	for i, s := range table {
		if s.Position != i+1 {
			t.Errorf("row %d: expected position %d, got %d", i, i+1, s.Position)
		}
		if s.ID != wantIDs[i] {
			t.Errorf("row %d: expected %s, got %s", i, wantIDs[i], s.ID)
		}
		if s.Podium != (i < 3) {
			t.Errorf("row %d: unexpected podium flag %v", i, s.Podium)
		}
	}
}
