package standings

import (
	"sort"

	"github.com/Dosada05/pickleball-tournament/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const podiumSize = 3

// Standing - строка турнирной таблицы.
type Standing struct {
	Position int  `json:"position"`
	Podium   bool `json:"podium"`
	models.Team
}

// Ranker orders teams by ranking points, then point differential, then name
// compared with the collation rules of its locale.
type Ranker struct {
	tag language.Tag
}

func NewRanker(tag language.Tag) *Ranker {
	return &Ranker{tag: tag}
}

// Sort returns a sorted copy of teams. Teams equal on all keys keep their input order.
func (r *Ranker) Sort(teams []models.Team) []models.Team {
	out := cloneTeams(teams)
	// collate.Collator is not safe for concurrent use, so each call gets its own.
	col := collate.New(r.tag)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RankingPoint != b.RankingPoint {
			return a.RankingPoint > b.RankingPoint
		}
		if a.PointDiff != b.PointDiff {
			return a.PointDiff > b.PointDiff
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	return out
}

// Table returns the ranking with 1-based positions.
func (r *Ranker) Table(teams []models.Team) []Standing {
	sorted := r.Sort(teams)
	table := make([]Standing, len(sorted))
	for i, t := range sorted {
		table[i] = Standing{Position: i + 1, Podium: i < podiumSize, Team: t}
	}
	return table
}
