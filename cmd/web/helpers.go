package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/profile"
	"github.com/styrkr/styrkr/internal/program"
	"github.com/styrkr/styrkr/internal/strength"
	"github.com/styrkr/styrkr/internal/workout"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeForbidden  = "FORBIDDEN"
	codeInternal   = "INTERNAL"
)

var errBadRequest = errors.NewSentinel("bad request")

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	if wantsJSON(r) {
		app.writeJSON(w, r, http.StatusInternalServerError,
			errorEnvelope{Error: errorBody{Code: codeInternal, Message: "internal server error"}})
		return
	}
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		app.errorJSON(w, r, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

func (app *application) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="styrkr"`)
	app.errorJSON(w, r, http.StatusUnauthorized, codeForbidden, "missing or invalid API key")
}

func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	app.writeJSON(w, r, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// handleError maps domain errors to JSON error responses.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.errorJSON(w, r, http.StatusNotFound, codeNotFound, "not found")
	case isValidation(err):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "invalid request", errors.SlogError(err))
		app.errorJSON(w, r, http.StatusBadRequest, codeValidation, validationMessage(err))
	default:
		app.serverError(w, r, err)
	}
}

func isValidation(err error) bool {
	return errors.Is(err, errBadRequest) ||
		errors.Is(err, strength.ErrValidation) ||
		errors.Is(err, profile.ErrValidation) ||
		errors.Is(err, program.ErrInvalidLogEntry) ||
		errors.Is(err, workout.ErrValidation)
}

// validationMessage returns the user facing message of a validation error.
func validationMessage(err error) string {
	var (
		strengthErr *strength.ValidationError
		profileErr  *profile.ValidationError
		logErr      *program.LogValidationError
	)
	switch {
	case errors.As(err, &strengthErr):
		return strengthErr.Message
	case errors.As(err, &profileErr):
		return profileErr.Message
	case errors.As(err, &logErr):
		return logErr.Message
	default:
		msg := err.Error()
		for _, sentinel := range []error{errBadRequest, workout.ErrValidation} {
			msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
		}
		return msg
	}
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errBadRequest, "body must be a valid JSON document", slog.String("cause", err.Error()))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.Wrap(errBadRequest, "body must contain a single JSON document")
	}
	return nil
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseDate parses a YYYY-MM-DD value named name.
func parseDate(name, value string) (calendar.Date, error) {
	if value == "" {
		return calendar.Date{}, errors.Wrap(errBadRequest, name+" is required")
	}
	d, err := calendar.Parse(value)
	if err != nil {
		return calendar.Date{}, errors.Wrap(errBadRequest, name+" must be a YYYY-MM-DD date")
	}
	return d, nil
}

// parseDateRange reads the fromKey and toKey query parameters.
func parseDateRange(r *http.Request, fromKey, toKey string) (calendar.Date, calendar.Date, error) {
	from, err := parseDate(fromKey, r.URL.Query().Get(fromKey))
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	to, err := parseDate(toKey, r.URL.Query().Get(toKey))
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return from, to, nil
}
