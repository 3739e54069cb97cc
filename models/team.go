package models

// Stats - агрегированная статистика команды. Меняется только через пакет standings.
type Stats struct {
	Played       int `json:"played"`
	Win          int `json:"win"`
	Lose         int `json:"lose"`
	PointDiff    int `json:"point_diff"`
	RankingPoint int `json:"ranking_point"`
}

// Add returns s with every counter of d added.
func (s Stats) Add(d Stats) Stats {
	return Stats{
		Played:       s.Played + d.Played,
		Win:          s.Win + d.Win,
		Lose:         s.Lose + d.Lose,
		PointDiff:    s.PointDiff + d.PointDiff,
		RankingPoint: s.RankingPoint + d.RankingPoint,
	}
}

// Sub returns s with every counter of d subtracted.
func (s Stats) Sub(d Stats) Stats {
	return Stats{
		Played:       s.Played - d.Played,
		Win:          s.Win - d.Win,
		Lose:         s.Lose - d.Lose,
		PointDiff:    s.PointDiff - d.PointDiff,
		RankingPoint: s.RankingPoint - d.RankingPoint,
	}
}

// Team представляет команду турнира (в пиклболе обычно пара игроков).
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Stats
}

// ResetStats обнуляет все счетчики команды.
func (t *Team) ResetStats() {
	t.Stats = Stats{}
}
