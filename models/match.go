package models

// Score - счет сыгранного матча.
type Score struct {
	A int `json:"score_a"`
	B int `json:"score_b"`
}

// Diff returns A - B.
func (s Score) Diff() int {
	return s.A - s.B
}

// Match - матч круговой системы между двумя командами.
// ScoreA и ScoreB либо оба nil (матч не сыгран), либо оба заданы.
type Match struct {
	ID      string `json:"id"`
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id"`
	ScoreA  *int   `json:"score_a"`
	ScoreB  *int   `json:"score_b"`
}

// Score returns the stored score and whether the match has been played.
// A half-set score is treated as unplayed.
func (m Match) Score() (Score, bool) {
	if m.ScoreA == nil || m.ScoreB == nil {
		return Score{}, false
	}
	return Score{A: *m.ScoreA, B: *m.ScoreB}, true
}

// IsPlayed reports whether both scores are set.
func (m Match) IsPlayed() bool {
	_, ok := m.Score()
	return ok
}

// WithScore returns a copy of m carrying score.
func (m Match) WithScore(score Score) Match {
	a, b := score.A, score.B
	m.ScoreA = &a
	m.ScoreB = &b
	return m
}

// WithoutScore returns a copy of m with both scores unset.
func (m Match) WithoutScore() Match {
	m.ScoreA = nil
	m.ScoreB = nil
	return m
}

// Involves reports whether teamID plays in the match.
func (m Match) Involves(teamID string) bool {
	return m.TeamAID == teamID || m.TeamBID == teamID
}
