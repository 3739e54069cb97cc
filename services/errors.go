package services

import "errors"

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ошибки валидации (операция не выполняется, состояние не меняется)
	ErrValidationFailed  = errors.New("validation failed")
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrTeamNameTooLong   = errors.New("team name is too long")
	ErrInvalidScore      = errors.New("invalid score")
	ErrCredentialsNeeded = errors.New("username and password are required")

	// Ошибки согласованности
	ErrMatchUnplayed    = errors.New("match has no score to clear")
	ErrMatchTeamMissing = errors.New("match references a team that no longer exists")

	// Сохранение приостановлено: турнир не удалось загрузить из хранилища
	ErrPersistenceSuspended = errors.New("persistence suspended until the stored tournament is loaded")

	// Ресурс не найден
	ErrTeamNotFound  = errors.New("team not found")
	ErrMatchNotFound = errors.New("match not found")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current role")
)
