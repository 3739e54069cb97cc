package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/pickleball-tournament/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576 // 1MB

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// getIDFromURL достает непустой строковый идентификатор из пути.
func getIDFromURL(r *http.Request, param string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, param))
	if id == "" {
		return "", fmt.Errorf("missing %s in URL", param)
	}
	return id, nil
}

// responder пишет ответы об ошибках и логирует серверные сбои.
type responder struct {
	logger *slog.Logger
}

func (h responder) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

func (h responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	h.respond(w, r, status, jsonResponse{"error": message})
}

func (h responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	h.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (h responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h responder) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func (h responder) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (h responder) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (h responder) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	h.errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func (h responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound):
		h.notFoundResponse(w, r, err)

	// Невалидные данные: операция отклонена, состояние не изменилось
	case errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTeamNameTooLong),
		errors.Is(err, services.ErrValidationFailed):
		h.failedValidationResponse(w, r, err)
	case errors.Is(err, services.ErrCredentialsNeeded):
		h.badRequestResponse(w, r, err)

	// Нарушение согласованности
	case errors.Is(err, services.ErrMatchUnplayed),
		errors.Is(err, services.ErrMatchTeamMissing):
		h.conflictResponse(w, r, err)

	case errors.Is(err, services.ErrAuthenticationFailed):
		h.unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation):
		h.errorResponse(w, r, http.StatusForbidden, err.Error())

	default:
		h.serverErrorResponse(w, r, err)
	}
}
