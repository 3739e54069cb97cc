package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/services"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"username":"admin","password":"x"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"username":`, "badly-formed JSON"},
		{"unknown field", `{"user":"admin"}`, "unknown key"},
		{"wrong type", `{"username":5}`, "incorrect JSON type"},
		{"two values", `{"username":"a"}{"username":"b"}`, "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst models.Credentials
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	h := responder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: t1", services.ErrTeamNotFound), http.StatusNotFound},
		{services.ErrMatchNotFound, http.StatusNotFound},
		{services.ErrInvalidScore, http.StatusUnprocessableEntity},
		{services.ErrTeamNameRequired, http.StatusUnprocessableEntity},
		{services.ErrCredentialsNeeded, http.StatusBadRequest},
		{services.ErrMatchUnplayed, http.StatusConflict},
		{services.ErrMatchTeamMissing, http.StatusConflict},
		{services.ErrAuthenticationFailed, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	matches := []services.MatchView{
		{Match: models.Match{ID: "1"}, TeamAName: "Dink Masters", TeamBName: "Kitchen Crew"},
		{Match: models.Match{ID: "2"}, TeamAName: "Kitchen Crew", TeamBName: "Straße Smash"},
		{Match: models.Match{ID: "3"}, TeamAName: "Dink Masters", TeamBName: "Straße Smash"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"  ", []string{"1", "2", "3"}},
		{"kitchen", []string{"1", "2"}},
		{"DINK", []string{"1", "3"}},
		{"SMASH", []string{"2", "3"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		got := filterMatches(matches, tt.query)
		ids := make([]string, len(got))
		for i, m := range got {
			ids[i] = m.ID
		}
		if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
			t.Errorf("query %q: expected %v, got %v", tt.query, tt.want, ids)
		}
	}
}
