package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/pickleball-tournament/middleware"
	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/services"
)

type AuthHandler struct {
	responder
	authService services.AuthService
	jwtSecret   string
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   responder{logger: logger},
		authService: authService,
		jwtSecret:   jwtSecret,
		now:         time.Now,
	}
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	ok, err := h.authService.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !ok {
		h.unauthorizedResponse(w, r, services.ErrAuthenticationFailed.Error())
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, strings.TrimSpace(input.Username), models.RoleAdmin, h.now())
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, jsonResponse{
		"token": token,
		"role":  models.RoleAdmin,
	})
}

// Logout обрабатывает POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(r.Context())
	h.respond(w, r, http.StatusOK, jsonResponse{"role": h.authService.Role()})
}

// Role обрабатывает GET /api/auth/role
func (h *AuthHandler) Role(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, jsonResponse{"role": h.authService.Role()})
}
