package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/middleware"
	"github.com/hooplink/hooplink-api/services"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
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
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readOptionalJSON is readJSON for endpoints whose body may be omitted.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return readJSON(w, r, dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
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

// responder writes error envelopes and logs server-side failures.
type responder struct {
	logger *slog.Logger
}

func (rs responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	if err := writeJSON(w, status, jsonResponse{"error": message}, nil); err != nil {
		rs.logger.Error("failed to write error response",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rs responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.Error("internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	rs.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (rs responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (rs responder) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	rs.errorResponse(w, r, http.StatusNotFound, message)
}

func (rs responder) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	rs.errorResponse(w, r, http.StatusConflict, message)
}

func (rs responder) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	rs.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (rs responder) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	rs.errorResponse(w, r, http.StatusForbidden, message)
}

func (rs responder) writeOK(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		rs.serverErrorResponse(w, r, err)
	}
}

// mapServiceErrorToHTTP turns service and engine errors into responses.
func (rs responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrBracketNotCreated),
		errors.Is(err, brackets.ErrMatchNotFound):
		rs.notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrNotTournament),
		errors.Is(err, brackets.ErrInvalidConfiguration),
		errors.Is(err, brackets.ErrMatchNotReady),
		errors.Is(err, brackets.ErrMatchNotDecided),
		errors.Is(err, brackets.ErrInvalidWinner),
		errors.Is(err, brackets.ErrAmbiguousResult),
		errors.Is(err, brackets.ErrInvalidScore):
		rs.badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrForbiddenOperation):
		rs.forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrBracketExists),
		errors.Is(err, services.ErrRosterNotFull),
		errors.Is(err, services.ErrGameFull),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrGameClosed),
		errors.Is(err, services.ErrRosterLocked),
		errors.Is(err, services.ErrHostMustTransfer),
		errors.Is(err, brackets.ErrMatchAlreadyDecided),
		errors.Is(err, brackets.ErrDownstreamDecided):
		rs.conflictResponse(w, r, err.Error())

	case errors.Is(err, middleware.ErrNoUserInContext):
		rs.unauthorizedResponse(w, r, "authentication required")

	default:
		rs.serverErrorResponse(w, r, err)
	}
}

// currentUser reads the authenticated caller, writing 401 when absent.
func (rs responder) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		rs.unauthorizedResponse(w, r, "authentication required")
		return "", false
	}
	return userID, true
}

func getIDFromURL(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return id, nil
}
