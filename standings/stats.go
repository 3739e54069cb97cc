// Package standings implements the statistics engine and ranking of a round-robin tournament.
// Every function is pure: inputs are copied, never mutated.
package standings

import (
	"errors"

	"github.com/Dosada05/pickleball-tournament/models"
)

var ErrMatchUnplayed = errors.New("match has no score")

type statsOp func(models.Stats, models.Stats) models.Stats

// Outcome returns the counter deltas a score contributes to team A and team B.
func Outcome(score models.Score) (teamA, teamB models.Stats) {
	diff := score.Diff()
	teamA = models.Stats{Played: 1, PointDiff: diff}
	teamB = models.Stats{Played: 1, PointDiff: -diff}
	switch {
	case diff > 0:
		teamA.Win, teamA.RankingPoint = 1, 1
		teamB.Lose = 1
	case diff < 0:
		teamB.Win, teamB.RankingPoint = 1, 1
		teamA.Lose = 1
	}
	return teamA, teamB
}

// Apply returns teams with score applied to both sides of m.
// A side whose team is not in the list is skipped.
func Apply(teams []models.Team, m models.Match, score models.Score) []models.Team {
	out := cloneTeams(teams)
	adjust(out, indexTeams(out), m, score, models.Stats.Add)
	return out
}

// Revert is the exact inverse of Apply for the same match and score.
func Revert(teams []models.Team, m models.Match, score models.Score) []models.Team {
	out := cloneTeams(teams)
	adjust(out, indexTeams(out), m, score, models.Stats.Sub)
	return out
}

// UpdateScore replaces the score of m: the stored score, if any, is reverted
// first and then score is applied. It returns the new teams and the updated match.
func UpdateScore(teams []models.Team, m models.Match, score models.Score) ([]models.Team, models.Match) {
	if prior, ok := m.Score(); ok {
		teams = Revert(teams, m, prior)
	}
	return Apply(teams, m, score), m.WithScore(score)
}

// ClearScore reverts the stored score of m and unsets it.
func ClearScore(teams []models.Team, m models.Match) ([]models.Team, models.Match, error) {
	prior, ok := m.Score()
	if !ok {
		return nil, m, ErrMatchUnplayed
	}
	return Revert(teams, m, prior), m.WithoutScore(), nil
}

// RecalculateAll zeroes every team and applies every scored match in list order.
func RecalculateAll(teams []models.Team, matches []models.Match) []models.Team {
	out := cloneTeams(teams)
	for i := range out {
		out[i].ResetStats()
	}
	index := indexTeams(out)
	for _, m := range matches {
		if score, ok := m.Score(); ok {
			adjust(out, index, m, score, models.Stats.Add)
		}
	}
	return out
}

// Drift описывает расхождение накопленной статистики с пересчитанной.
type Drift struct {
	TeamID   string       `json:"team_id"`
	Name     string       `json:"name"`
	Actual   models.Stats `json:"actual"`
	Expected models.Stats `json:"expected"`
}

// Diff lists teams of actual whose counters differ from the same team in expected.
func Diff(actual, expected []models.Team) []Drift {
	index := indexTeams(expected)
	drifts := make([]Drift, 0)
	for _, t := range actual {
		i, ok := index[t.ID]
		if !ok || expected[i].Stats == t.Stats {
			continue
		}
		drifts = append(drifts, Drift{TeamID: t.ID, Name: t.Name, Actual: t.Stats, Expected: expected[i].Stats})
	}
	return drifts
}

func adjust(teams []models.Team, index map[string]int, m models.Match, score models.Score, op statsOp) {
	deltaA, deltaB := Outcome(score)
	if i, ok := index[m.TeamAID]; ok {
		teams[i].Stats = op(teams[i].Stats, deltaA)
	}
	if i, ok := index[m.TeamBID]; ok {
		teams[i].Stats = op(teams[i].Stats, deltaB)
	}
}

func indexTeams(teams []models.Team) map[string]int {
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}
	return index
}

func cloneTeams(teams []models.Team) []models.Team {
	out := make([]models.Team, len(teams))
	copy(out, teams)
	return out
}
