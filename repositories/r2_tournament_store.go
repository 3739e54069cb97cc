package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/storage"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
)

const (
	snapshotContentType = "application/json"
	roleContentType     = "text/plain; charset=utf-8"
)

// r2TournamentStore хранит снимок и роль как два объекта в бакете:
// tournaments/<slug>/state.json и tournaments/<slug>/role.
type r2TournamentStore struct {
	objects  storage.ObjectStore
	stateKey string
	roleKey  string
	now      func() time.Time
}

func NewR2TournamentStore(objects storage.ObjectStore, tournamentID string) TournamentStore {
	prefix := "tournaments/" + tournamentKey(tournamentID)
	return &r2TournamentStore{
		objects:  objects,
		stateKey: prefix + "/state.json",
		roleKey:  prefix + "/role",
		now:      time.Now,
	}
}

func tournamentKey(tournamentID string) string {
	key := slug.Make(tournamentID)
	if key == "" {
		return "default"
	}
	return key
}

func (s *r2TournamentStore) LoadTournament(ctx context.Context) (*models.TournamentState, error) {
	payload, err := s.objects.Get(ctx, s.stateKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load tournament snapshot: %w", err)
	}
	return decodeSnapshot(payload)
}

func (s *r2TournamentStore) SaveTournament(ctx context.Context, state models.TournamentState) error {
	payload, err := encodeSnapshot(models.NewSnapshot(state, s.now()))
	if err != nil {
		return err
	}
	if _, err := s.objects.Put(ctx, s.stateKey, snapshotContentType, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to save tournament snapshot: %w", err)
	}
	return nil
}

func (s *r2TournamentStore) LoadRole(ctx context.Context) (models.Role, error) {
	raw, err := s.objects.Get(ctx, s.roleKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return models.RoleUser, nil
		}
		return models.RoleUser, fmt.Errorf("failed to load role: %w", err)
	}
	return models.ParseRole(strings.TrimSpace(string(raw))), nil
}

func (s *r2TournamentStore) SaveRole(ctx context.Context, role models.Role) error {
	value := string(models.ParseRole(string(role)))
	if _, err := s.objects.Put(ctx, s.roleKey, roleContentType, strings.NewReader(value)); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

func (s *r2TournamentStore) ClearRole(ctx context.Context) error {
	if err := s.objects.Delete(ctx, s.roleKey); err != nil {
		return fmt.Errorf("failed to clear role: %w", err)
	}
	return nil
}

func (s *r2TournamentStore) ClearAll(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, key := range []string{s.stateKey, s.roleKey} {
		key := key
		g.Go(func() error {
			return s.objects.Delete(gCtx, key)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to clear tournament objects: %w", err)
	}
	return nil
}
