package models

import "time"

// SnapshotVersion - текущая версия формата сохраняемого снимка турнира.
const SnapshotVersion = 1

// TournamentState - полный снимок турнира: команды и матчи.
type TournamentState struct {
	Teams   []Team  `json:"teams"`
	Matches []Match `json:"matches"`
}

// Clone returns a deep copy of the state; score pointers are not shared.
func (s TournamentState) Clone() TournamentState {
	out := TournamentState{
		Teams:   make([]Team, len(s.Teams)),
		Matches: make([]Match, len(s.Matches)),
	}
	copy(out.Teams, s.Teams)
	for i, m := range s.Matches {
		if score, ok := m.Score(); ok {
			out.Matches[i] = m.WithScore(score)
		} else {
			out.Matches[i] = m.WithoutScore()
		}
	}
	return out
}

// TeamByID returns the index of the team with id, or -1.
func (s TournamentState) TeamByID(id string) int {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return i
		}
	}
	return -1
}

// MatchByID returns the index of the match with id, or -1.
func (s TournamentState) MatchByID(id string) int {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot - формат хранения TournamentState во внешнем хранилище.
type Snapshot struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	TournamentState
}

// NewSnapshot wraps state with the current format version.
func NewSnapshot(state TournamentState, now time.Time) Snapshot {
	return Snapshot{
		Version:         SnapshotVersion,
		UpdatedAt:       now.UTC(),
		TournamentState: state,
	}
}
