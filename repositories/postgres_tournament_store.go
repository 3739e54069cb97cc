package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
)

type postgresTournamentStore struct {
	db           *sql.DB
	tournamentID string
	now          func() time.Time
}

func NewPostgresTournamentStore(db *sql.DB, tournamentID string) TournamentStore {
	return &postgresTournamentStore{db: db, tournamentID: tournamentID, now: time.Now}
}

func (s *postgresTournamentStore) LoadTournament(ctx context.Context) (*models.TournamentState, error) {
	query := `SELECT payload FROM tournament_snapshots WHERE tournament_id = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, s.tournamentID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load tournament %q: %w", s.tournamentID, err)
	}
	return decodeSnapshot(payload)
}

func (s *postgresTournamentStore) SaveTournament(ctx context.Context, state models.TournamentState) error {
	snapshot := models.NewSnapshot(state, s.now())
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournament_snapshots (tournament_id, version, payload, updated_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (tournament_id) DO UPDATE SET
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, s.tournamentID, snapshot.Version, string(payload), snapshot.UpdatedAt); err != nil {
		if pqErrorCode(err) == pqUndefinedTable {
			return fmt.Errorf("failed to save tournament %q: schema is not migrated: %w", s.tournamentID, err)
		}
		return fmt.Errorf("failed to save tournament %q: %w", s.tournamentID, err)
	}
	return nil
}

func (s *postgresTournamentStore) LoadRole(ctx context.Context) (models.Role, error) {
	query := `SELECT role FROM tournament_roles WHERE tournament_id = $1`

	var role string
	err := s.db.QueryRowContext(ctx, query, s.tournamentID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleUser, nil
		}
		return models.RoleUser, fmt.Errorf("failed to load role: %w", err)
	}
	return models.ParseRole(role), nil
}

func (s *postgresTournamentStore) SaveRole(ctx context.Context, role models.Role) error {
	query := `
		INSERT INTO tournament_roles (tournament_id, role, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, s.tournamentID, string(models.ParseRole(string(role))), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

func (s *postgresTournamentStore) ClearRole(ctx context.Context) error {
	return s.clearRole(ctx, s.db)
}

func (s *postgresTournamentStore) clearRole(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM tournament_roles WHERE tournament_id = $1`, s.tournamentID); err != nil {
		return fmt.Errorf("failed to clear role: %w", err)
	}
	return nil
}

func (s *postgresTournamentStore) ClearAll(ctx context.Context) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tournament_snapshots WHERE tournament_id = $1`, s.tournamentID); err != nil {
			return fmt.Errorf("failed to delete tournament %q: %w", s.tournamentID, err)
		}
		return s.clearRole(ctx, tx)
	})
}
