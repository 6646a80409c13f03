package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/versions"
)

type errorResponse struct {
	Error   string          `json:"error"`
	Message string          `json:"message,omitempty"`
	Issues  []content.Issue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, admin.ErrHistoryNotRecorded) {
		return http.StatusInternalServerError, errorResponse{
			Error:   "history_not_recorded",
			Message: err.Error(),
		}
	}

	if errors.Is(err, content.ErrNotFound) || errors.Is(err, versions.ErrVersionNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	var validationErr *content.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validationErr.Issues,
		}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) ||
		errors.Is(err, content.ErrPageIDRequired) ||
		errors.Is(err, content.ErrPageIDInvalid) ||
		errors.Is(err, content.ErrUnknownLanguage) ||
		errors.Is(err, admin.ErrFieldRequired) ||
		errors.Is(err, admin.ErrInvalidField) ||
		errors.Is(err, admin.ErrFieldConflict) ||
		errors.Is(err, admin.ErrNoChanges) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	if errors.Is(err, content.ErrSourceUnavailable) {
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "source_unavailable",
			Message: err.Error(),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{
			Error:   "timeout",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

// resolveLocale prefers the locale query parameter and falls back to Accept-Language.
func resolveLocale(r *http.Request) (content.Language, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("locale")); raw != "" {
		locale, ok := content.ParseLanguage(raw)
		if !ok {
			return "", content.ErrUnknownLanguage
		}
		return locale, nil
	}
	return content.NegotiateLanguage(r.Header.Get("Accept-Language")), nil
}

func parseVersion(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return 0, false
	}
	return parsed, true
}
