package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/pickleball-tournament/models"
)

var (
	ErrSnapshotCorrupted   = errors.New("stored tournament snapshot is corrupted")
	ErrSnapshotUnsupported = errors.New("stored tournament snapshot version is not supported")
)

// TournamentStore - внешнее хранилище снимков турнира и "липкой" роли клиента.
// Хранилище не интерпретирует снимок, только сохраняет и отдает его.
type TournamentStore interface {
	// LoadTournament returns nil, nil when nothing has been saved yet.
	LoadTournament(ctx context.Context) (*models.TournamentState, error)
	SaveTournament(ctx context.Context, state models.TournamentState) error
	// LoadRole returns models.RoleUser when no role has been saved.
	LoadRole(ctx context.Context) (models.Role, error)
	SaveRole(ctx context.Context, role models.Role) error
	ClearRole(ctx context.Context) error
	// ClearAll drops both the tournament snapshot and the role.
	ClearAll(ctx context.Context) error
}

func encodeSnapshot(snapshot models.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament snapshot: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(payload []byte) (*models.TournamentState, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}
	// Снимки без поля version записаны до его появления и совместимы с версией 1.
	if snapshot.Version > models.SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSnapshotUnsupported, snapshot.Version)
	}

	state := snapshot.TournamentState
	if state.Teams == nil {
		state.Teams = []models.Team{}
	}
	if state.Matches == nil {
		state.Matches = []models.Match{}
	}
	return &state, nil
}
