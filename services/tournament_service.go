package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Dosada05/pickleball-tournament/brackets"
	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/repositories"
	"github.com/Dosada05/pickleball-tournament/standings"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const (
	DefaultMaxScore   = 11
	maxTeamNameLength = 100
)

// Notifier рассылает обновления турнира подписчикам (websocket-хаб).
type Notifier interface {
	Publish(roomID string, messageType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}

type TournamentOptions struct {
	MaxScore int
	Locale   language.Tag
}

type AddTeamInput struct {
	Name    string `json:"name"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type MatchView struct {
	models.Match
	TeamAName string `json:"team_a_name"`
	TeamBName string `json:"team_b_name"`
}

// TournamentService - единственный владелец TournamentState. Все изменения
// выполняются под мьютексом над копией состояния и применяются целиком.
type TournamentService struct {
	mu    sync.Mutex
	state models.TournamentState
	role  models.Role

	store     repositories.TournamentStore
	saver     *snapshotSaver
	generator brackets.ScheduleGenerator
	ranker    *standings.Ranker
	notifier  Notifier
	logger    *slog.Logger

	maxScore  int
	newTeamID func() string
}

func NewTournamentService(
	store repositories.TournamentStore,
	generator brackets.ScheduleGenerator,
	notifier Notifier,
	logger *slog.Logger,
	opts TournamentOptions,
) *TournamentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if opts.MaxScore <= 0 {
		opts.MaxScore = DefaultMaxScore
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	return &TournamentService{
		state:     models.TournamentState{Teams: []models.Team{}, Matches: []models.Match{}},
		role:      models.RoleUser,
		store:     store,
		saver:     newSnapshotSaver(store, logger),
		generator: generator,
		ranker:    standings.NewRanker(opts.Locale),
		notifier:  notifier,
		logger:    logger,
		maxScore:  opts.MaxScore,
		newTeamID: func() string { return "team-" + uuid.NewString() },
	}
}

// Load восстанавливает состояние и роль из хранилища. При ошибке сервис
// продолжает работу с пустым состоянием, но ничего не пишет в хранилище, пока
// очередная попытка Load не завершится успешно: иначе первое изменение затерло бы
// сохраненный турнир.
func (s *TournamentService) Load(ctx context.Context) error {
	var (
		loaded *models.TournamentState
		role   models.Role
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loaded, err = s.store.LoadTournament(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		role, err = s.store.LoadRole(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load tournament, persistence suspended", slog.Any("error", err))
		s.saver.hold(fmt.Errorf("%w: %v", ErrPersistenceSuspended, err))
		return fmt.Errorf("load tournament: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver.release(loaded != nil)
	s.role = models.ParseRole(string(role))
	if loaded != nil {
		state, dropped := normalizeState(*loaded)
		if dropped > 0 {
			s.logger.Warn("dropped inconsistent matches from stored tournament", slog.Int("dropped", dropped))
		}
		s.state = state
	}
	s.logger.Info("tournament loaded",
		slog.Int("teams", len(s.state.Teams)),
		slog.Int("matches", len(s.state.Matches)),
		slog.String("role", string(s.role)))
	return nil
}

// normalizeState enforces the model invariants on an externally supplied state:
// matches must reference two distinct existing teams, a pair appears once and
// a score is either fully set or unset.
func normalizeState(state models.TournamentState) (models.TournamentState, int) {
	out := models.TournamentState{
		Teams:   make([]models.Team, 0, len(state.Teams)),
		Matches: make([]models.Match, 0, len(state.Matches)),
	}
	teamIDs := make(map[string]struct{}, len(state.Teams))
	for _, t := range state.Teams {
		if _, dup := teamIDs[t.ID]; dup || t.ID == "" {
			continue
		}
		teamIDs[t.ID] = struct{}{}
		out.Teams = append(out.Teams, t)
	}

	dropped := 0
	pairs := make(map[string]struct{}, len(state.Matches))
	for _, m := range state.Matches {
		_, okA := teamIDs[m.TeamAID]
		_, okB := teamIDs[m.TeamBID]
		key := brackets.PairKey(m.TeamAID, m.TeamBID)
		_, dup := pairs[key]
		if !okA || !okB || m.TeamAID == m.TeamBID || dup {
			dropped++
			continue
		}
		pairs[key] = struct{}{}
		if score, ok := m.Score(); ok {
			m = m.WithScore(score)
		} else {
			m = m.WithoutScore()
		}
		out.Matches = append(out.Matches, m)
	}
	return out, dropped
}

// PersistenceSuspended reports whether writes are held back after a failed Load.
func (s *TournamentService) PersistenceSuspended() bool {
	return s.saver.isHeld()
}

// Run запускает фоновую запись снимков до отмены ctx.
func (s *TournamentService) Run(ctx context.Context) {
	s.saver.Run(ctx)
}

// Flush synchronously writes any pending snapshot to the store.
func (s *TournamentService) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// PersistError returns the last asynchronous persistence failure, if any.
func (s *TournamentService) PersistError() error {
	return s.saver.LastError()
}

// mutate applies fn to a copy of the state and swaps it in only on success.
func (s *TournamentService) mutate(ctx context.Context, op string, fn func(state *models.TournamentState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.logger.DebugContext(ctx, "tournament operation rejected", slog.String("op", op), slog.Any("error", err))
		return err
	}
	s.state = next

	snapshot := next.Clone()
	s.saver.enqueueState(snapshot)
	s.notifier.Publish(brackets.TournamentRoom, brackets.MessageTournamentUpdated, snapshot)
	s.logger.InfoContext(ctx, "tournament updated", slog.String("op", op))
	return nil
}

func (s *TournamentService) State() models.TournamentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *TournamentService) Teams() []models.Team {
	return s.State().Teams
}

func (s *TournamentService) Matches() []MatchView {
	state := s.State()
	names := make(map[string]string, len(state.Teams))
	for _, t := range state.Teams {
		names[t.ID] = t.Name
	}
	views := make([]MatchView, len(state.Matches))
	for i, m := range state.Matches {
		views[i] = MatchView{Match: m, TeamAName: names[m.TeamAID], TeamBName: names[m.TeamBID]}
	}
	return views
}

// Ranking returns the current standings table.
func (s *TournamentService) Ranking() []standings.Standing {
	return s.ranker.Table(s.Teams())
}

func (s *TournamentService) Role() models.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetRole меняет "липкую" роль и асинхронно сохраняет ее.
func (s *TournamentService) SetRole(ctx context.Context, role models.Role) {
	role = models.ParseRole(string(role))
	s.mu.Lock()
	s.role = role
	s.saver.enqueueRole(role)
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "role changed", slog.String("role", string(role)))
}

func teamName(input AddTeamInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		p1, p2 := strings.TrimSpace(input.Player1), strings.TrimSpace(input.Player2)
		if p1 == "" || p2 == "" {
			return "", ErrTeamNameRequired
		}
		name = p1 + " - " + p2
	}
	return validateTeamName(name)
}

func validateTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTeamNameRequired
	}
	if utf8.RuneCountInString(name) > maxTeamNameLength {
		return "", fmt.Errorf("%w: at most %d characters", ErrTeamNameTooLong, maxTeamNameLength)
	}
	return name, nil
}

func (s *TournamentService) AddTeam(ctx context.Context, input AddTeamInput) (*models.Team, error) {
	name, err := teamName(input)
	if err != nil {
		return nil, err
	}

	team := models.Team{ID: s.newTeamID(), Name: name}
	err = s.mutate(ctx, "add_team", func(state *models.TournamentState) error {
		state.Teams = append(state.Teams, team)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// RemoveTeam удаляет команду вместе со всеми ее матчами.
func (s *TournamentService) RemoveTeam(ctx context.Context, teamID string) error {
	return s.mutate(ctx, "remove_team", func(state *models.TournamentState) error {
		idx := state.TeamByID(teamID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		state.Teams = append(state.Teams[:idx], state.Teams[idx+1:]...)

		kept := state.Matches[:0]
		for _, m := range state.Matches {
			if !m.Involves(teamID) {
				kept = append(kept, m)
			}
		}
		state.Matches = kept
		return nil
	})
}

func (s *TournamentService) RenameTeam(ctx context.Context, teamID string, newName string) (*models.Team, error) {
	name, err := validateTeamName(newName)
	if err != nil {
		return nil, err
	}

	var renamed models.Team
	err = s.mutate(ctx, "rename_team", func(state *models.TournamentState) error {
		idx := state.TeamByID(teamID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
		}
		state.Teams[idx].Name = name
		renamed = state.Teams[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &renamed, nil
}

// GenerateMatches дополняет расписание недостающими парами. Существующие матчи
// и их счет не трогаются; статистика обнуляется только у команд без сыгранных матчей.
// Меньше двух команд - не ошибка: пар нет, добавляется 0 матчей.
func (s *TournamentService) GenerateMatches(ctx context.Context) (int, error) {
	added := 0
	err := s.mutate(ctx, "generate_matches", func(state *models.TournamentState) error {
		newMatches := brackets.MissingMatches(s.generator, state.Matches, state.Teams)
		state.Matches = append(state.Matches, newMatches...)
		added = len(newMatches)

		for i := range state.Teams {
			if state.Teams[i].Played == 0 {
				state.Teams[i].ResetStats()
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *TournamentService) validateScore(scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 || scoreA > s.maxScore || scoreB > s.maxScore {
		return fmt.Errorf("%w: scores must be between 0 and %d, got %d-%d", ErrInvalidScore, s.maxScore, scoreA, scoreB)
	}
	return nil
}

// UpdateMatchScore sets or replaces the score of a match.
func (s *TournamentService) UpdateMatchScore(ctx context.Context, matchID string, scoreA, scoreB int) (*models.Match, error) {
	if err := s.validateScore(scoreA, scoreB); err != nil {
		return nil, err
	}

	var updated models.Match
	err := s.mutate(ctx, "update_score", func(state *models.TournamentState) error {
		idx := state.MatchByID(matchID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		m := state.Matches[idx]
		if state.TeamByID(m.TeamAID) < 0 || state.TeamByID(m.TeamBID) < 0 {
			return fmt.Errorf("%w: %s", ErrMatchTeamMissing, matchID)
		}

		state.Teams, updated = standings.UpdateScore(state.Teams, m, models.Score{A: scoreA, B: scoreB})
		state.Matches[idx] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *TournamentService) ClearMatchScore(ctx context.Context, matchID string) (*models.Match, error) {
	var cleared models.Match
	err := s.mutate(ctx, "clear_score", func(state *models.TournamentState) error {
		idx := state.MatchByID(matchID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}

		teams, m, err := standings.ClearScore(state.Teams, state.Matches[idx])
		if err != nil {
			if errors.Is(err, standings.ErrMatchUnplayed) {
				return fmt.Errorf("%w: %s", ErrMatchUnplayed, matchID)
			}
			return err
		}
		state.Teams = teams
		state.Matches[idx] = m
		cleared = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cleared, nil
}

// RecalculateAll rebuilds every team's statistics from the scored matches and
// returns the teams whose counters changed.
func (s *TournamentService) RecalculateAll(ctx context.Context) ([]standings.Drift, error) {
	var drifts []standings.Drift
	err := s.mutate(ctx, "recalculate_all", func(state *models.TournamentState) error {
		recalculated := standings.RecalculateAll(state.Teams, state.Matches)
		drifts = standings.Diff(state.Teams, recalculated)
		state.Teams = recalculated
		return nil
	})
	return drifts, err
}

// CheckDrift compares the incremental statistics with a full recalculation
// and, if they differ, replaces them with the recalculated values.
func (s *TournamentService) CheckDrift(ctx context.Context) ([]standings.Drift, error) {
	state := s.State()
	drifts := standings.Diff(state.Teams, standings.RecalculateAll(state.Teams, state.Matches))
	if len(drifts) == 0 {
		return nil, nil
	}

	s.logger.WarnContext(ctx, "team statistics drifted from match results, reconciling", slog.Int("teams", len(drifts)))
	return s.RecalculateAll(ctx)
}

// ResetTournament удаляет все команды и матчи; хранилище очищается, текущая роль сохраняется.
func (s *TournamentService) ResetTournament(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.TournamentState{Teams: []models.Team{}, Matches: []models.Match{}}
	s.saver.enqueueReset(s.role)
	s.notifier.Publish(brackets.TournamentRoom, brackets.MessageTournamentReset, s.state.Clone())
	s.logger.InfoContext(ctx, "tournament reset")
	return nil
}
