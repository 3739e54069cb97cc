package repositories

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/storage"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return &storage.UploadResult{Key: key}, nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return bytes.Clone(data), nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	delete(f.objects, key)
	f.mu.Unlock()
	return nil
}

func sampleState() models.TournamentState {
	a, b := 11, 4
	return models.TournamentState{
		Teams: []models.Team{
			{ID: "team-1", Name: "Anna - Minh", Stats: models.Stats{Played: 1, Win: 1, PointDiff: 7, RankingPoint: 1}},
			{ID: "team-2", Name: "Lan - Bao", Stats: models.Stats{Played: 1, Lose: 1, PointDiff: -7}},
		},
		Matches: []models.Match{{ID: "team-1-team-2", TeamAID: "team-1", TeamBID: "team-2", ScoreA: &a, ScoreB: &b}},
	}
}

func exerciseStore(t *testing.T, store TournamentStore) {
	t.Helper()
	ctx := context.Background()

	state, err := store.LoadTournament(ctx)
	if err != nil || state != nil {
		t.Fatalf("expected empty store, got %+v, %v", state, err)
	}
	role, err := store.LoadRole(ctx)
	if err != nil || role != models.RoleUser {
		t.Fatalf("expected default role user, got %q, %v", role, err)
	}

	if err := store.SaveTournament(ctx, sampleState()); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}
	if err := store.SaveRole(ctx, models.RoleAdmin); err != nil {
		t.Fatalf("SaveRole: %v", err)
	}

	loaded, err := store.LoadTournament(ctx)
	if err != nil || loaded == nil {
		t.Fatalf("LoadTournament: %+v, %v", loaded, err)
	}
	if len(loaded.Teams) != 2 || loaded.Teams[0].Stats.PointDiff != 7 || loaded.Teams[1].Name != "Lan - Bao" {
		t.Errorf("unexpected teams: %+v", loaded.Teams)
	}
	score, ok := loaded.Matches[0].Score()
	if !ok || score != (models.Score{A: 11, B: 4}) {
		t.Errorf("unexpected match score: %+v (played=%v)", score, ok)
	}

	if role, _ := store.LoadRole(ctx); role != models.RoleAdmin {
		t.Errorf("expected admin role, got %q", role)
	}
	if err := store.ClearRole(ctx); err != nil {
		t.Fatalf("ClearRole: %v", err)
	}
	if role, _ := store.LoadRole(ctx); role != models.RoleUser {
		t.Errorf("expected user role after clear, got %q", role)
	}

	store.SaveRole(ctx, models.RoleAdmin)
	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if state, _ := store.LoadTournament(ctx); state != nil {
		t.Errorf("expected no tournament after ClearAll, got %+v", state)
	}
	if role, _ := store.LoadRole(ctx); role != models.RoleUser {
		t.Errorf("expected role reset after ClearAll, got %q", role)
	}
}

func TestMemoryTournamentStore(t *testing.T) {
	exerciseStore(t, NewMemoryTournamentStore())
}

func TestR2TournamentStore(t *testing.T) {
	objects := newFakeObjectStore()
	exerciseStore(t, NewR2TournamentStore(objects, "Spring Cup 2026"))
}

func TestR2TournamentStoreKeys(t *testing.T) {
	objects := newFakeObjectStore()
	store := NewR2TournamentStore(objects, "Spring Cup 2026")

	if err := store.SaveTournament(context.Background(), sampleState()); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}
	if _, ok := objects.objects["tournaments/spring-cup-2026/state.json"]; !ok {
		t.Errorf("expected snapshot under slugged key, got keys %v", objects.objects)
	}
}

func TestR2TournamentStoreSaveError(t *testing.T) {
	objects := newFakeObjectStore()
	objects.failPut = errors.New("bucket unavailable")
	store := NewR2TournamentStore(objects, "default")

	if err := store.SaveTournament(context.Background(), sampleState()); err == nil {
		t.Fatal("expected save error")
	}
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"legacy without version", `{"teams":[{"id":"a","name":"A"}],"matches":[]}`, nil},
		{"current version", `{"version":1,"teams":[],"matches":null}`, nil},
		{"future version", `{"version":2,"teams":[],"matches":[]}`, ErrSnapshotUnsupported},
		{"corrupted", `{"teams":`, ErrSnapshotCorrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := decodeSnapshot([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if state.Teams == nil || state.Matches == nil {
				t.Errorf("expected non-nil slices, got %+v", state)
			}
		})
	}
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository(models.User{Username: "admin", PasswordHash: "h1"})

	user, err := repo.GetByUsername(ctx, "admin")
	if err != nil || user.PasswordHash != "h1" {
		t.Fatalf("GetByUsername: %+v, %v", user, err)
	}
	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.Create(ctx, &models.User{Username: "admin"}); !errors.Is(err, ErrUserUsernameConflict) {
		t.Errorf("expected ErrUserUsernameConflict, got %v", err)
	}
	if err := repo.UpdatePassword(ctx, "admin", "h2"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if user, _ := repo.GetByUsername(ctx, "admin"); user.PasswordHash != "h2" {
		t.Errorf("expected updated hash, got %q", user.PasswordHash)
	}
}
