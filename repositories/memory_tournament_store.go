package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
)

// memoryTournamentStore хранит снимок в памяти процесса в закодированном виде,
// чтобы загрузка возвращала независимую копию.
type memoryTournamentStore struct {
	mu      sync.Mutex
	payload []byte
	role    *models.Role
}

func NewMemoryTournamentStore() TournamentStore {
	return &memoryTournamentStore{}
}

func (s *memoryTournamentStore) LoadTournament(ctx context.Context) (*models.TournamentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return nil, nil
	}
	return decodeSnapshot(s.payload)
}

func (s *memoryTournamentStore) SaveTournament(ctx context.Context, state models.TournamentState) error {
	payload, err := encodeSnapshot(models.NewSnapshot(state, time.Now()))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()
	return nil
}

func (s *memoryTournamentStore) LoadRole(ctx context.Context) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role == nil {
		return models.RoleUser, nil
	}
	return *s.role, nil
}

func (s *memoryTournamentStore) SaveRole(ctx context.Context, role models.Role) error {
	role = models.ParseRole(string(role))
	s.mu.Lock()
	s.role = &role
	s.mu.Unlock()
	return nil
}

func (s *memoryTournamentStore) ClearRole(ctx context.Context) error {
	s.mu.Lock()
	s.role = nil
	s.mu.Unlock()
	return nil
}

func (s *memoryTournamentStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.payload = nil
	s.role = nil
	s.mu.Unlock()
	return nil
}
