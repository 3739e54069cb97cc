package brackets

import (
	"github.com/Dosada05/pickleball-tournament/models"
)

const pairKeySeparator = "|"

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate creates one match for every unordered pair of teams, in input order:
// team i meets team j (i < j) exactly once, n*(n-1)/2 matches in total.
// Scores start unset. The input is not modified.
func (g *RoundRobinGenerator) Generate(teams []models.Team) []models.Match {
	if len(teams) < 2 {
		return []models.Match{}
	}

	matches := make([]models.Match, 0, len(teams)*(len(teams)-1)/2)
	seen := make(map[string]struct{}, cap(matches))

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			aID, bID := teams[i].ID, teams[j].ID
			if aID == bID {
				continue
			}
			key := PairKey(aID, bID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			matches = append(matches, models.Match{
				ID:      MatchID(aID, bID),
				TeamAID: aID,
				TeamBID: bID,
			})
		}
	}

	return matches
}

// MatchID derives the match id from the two team ids in generation order.
func MatchID(teamAID, teamBID string) string {
	return teamAID + "-" + teamBID
}

// PairKey - канонический ключ неупорядоченной пары команд.
// PairKey(a, b) == PairKey(b, a).
func PairKey(teamAID, teamBID string) string {
	if teamBID < teamAID {
		teamAID, teamBID = teamBID, teamAID
	}
	return teamAID + pairKeySeparator + teamBID
}

// MissingMatches returns the matches of the full schedule for teams whose pair
// is not yet covered by existing. Existing matches are never returned or altered.
func MissingMatches(g ScheduleGenerator, existing []models.Match, teams []models.Team) []models.Match {
	existingPairs := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		existingPairs[PairKey(m.TeamAID, m.TeamBID)] = struct{}{}
	}

	added := make([]models.Match, 0)
	for _, m := range g.Generate(teams) {
		if _, ok := existingPairs[PairKey(m.TeamAID, m.TeamBID)]; ok {
			continue
		}
		added = append(added, m)
	}
	return added
}
