package brackets

import "github.com/Dosada05/pickleball-tournament/models"

// ScheduleGenerator строит расписание матчей для списка команд.
type ScheduleGenerator interface {
	Generate(teams []models.Team) []models.Match

	GetName() string
}
