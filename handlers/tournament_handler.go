package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/pickleball-tournament/services"
	"golang.org/x/text/cases"
)

type TournamentHandler struct {
	responder
	tournamentService *services.TournamentService
}

func NewTournamentHandler(ts *services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		responder:         responder{logger: logger},
		tournamentService: ts,
	}
}

func (h *TournamentHandler) withPersistWarning(resp jsonResponse) jsonResponse {
	if err := h.tournamentService.PersistError(); err != nil {
		resp["persist_warning"] = err.Error()
	}
	return resp
}

// GetTournament обрабатывает GET /api/tournament
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{
		"teams":   h.tournamentService.Teams(),
		"matches": h.tournamentService.Matches(),
		"role":    h.tournamentService.Role(),
	}))
}

func (h *TournamentHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, jsonResponse{"teams": h.tournamentService.Teams()})
}

// AddTeam обрабатывает POST /api/teams
func (h *TournamentHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	var input services.AddTeamInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.AddTeam(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, h.withPersistWarning(jsonResponse{"team": team}))
}

// RenameTeam обрабатывает PATCH /api/teams/{teamID}
func (h *TournamentHandler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.RenameTeam(r.Context(), teamID, input.Name)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{"team": team}))
}

// RemoveTeam обрабатывает DELETE /api/teams/{teamID}
func (h *TournamentHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.RemoveTeam(r.Context(), teamID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMatches обрабатывает GET /api/matches?search=
func (h *TournamentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches := filterMatches(h.tournamentService.Matches(), r.URL.Query().Get("search"))
	h.respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// filterMatches оставляет матчи, в названии одной из команд которых есть query.
// Сравнение без учета регистра; на состояние турнира не влияет.
func filterMatches(matches []services.MatchView, query string) []services.MatchView {
	query = strings.TrimSpace(query)
	if query == "" {
		return matches
	}

	fold := cases.Fold()
	needle := fold.String(query)
	filtered := make([]services.MatchView, 0, len(matches))
	for _, m := range matches {
		if strings.Contains(fold.String(m.TeamAName), needle) || strings.Contains(fold.String(m.TeamBName), needle) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// GenerateMatches обрабатывает POST /api/matches/generate
func (h *TournamentHandler) GenerateMatches(w http.ResponseWriter, r *http.Request) {
	added, err := h.tournamentService.GenerateMatches(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{
		"added":   added,
		"matches": h.tournamentService.Matches(),
	}))
}

type scoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

// UpdateScore обрабатывает PUT /api/matches/{matchID}/score
func (h *TournamentHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if input.ScoreA == nil || input.ScoreB == nil {
		h.failedValidationResponse(w, r, errors.New("score_a and score_b are required"))
		return
	}

	match, err := h.tournamentService.UpdateMatchScore(r.Context(), matchID, *input.ScoreA, *input.ScoreB)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{"match": match}))
}

// ClearScore обрабатывает DELETE /api/matches/{matchID}/score
func (h *TournamentHandler) ClearScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.ClearMatchScore(r.Context(), matchID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{"match": match}))
}

func (h *TournamentHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, jsonResponse{"ranking": h.tournamentService.Ranking()})
}

// Recalculate обрабатывает POST /api/tournament/recalculate
func (h *TournamentHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.tournamentService.RecalculateAll(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, h.withPersistWarning(jsonResponse{
		"corrected": drifts,
		"teams":     h.tournamentService.Teams(),
	}))
}

// Reset обрабатывает POST /api/tournament/reset
func (h *TournamentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.ResetTournament(r.Context()); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
