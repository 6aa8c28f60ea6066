package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"xvent/internal/delivery/http/helpers"
	"xvent/internal/domain"
)

// writeDomainError maps domain errors to HTTP status codes and writes the
// error envelope. Unrecognized errors are logged and become 500s.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMaxDepth):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrTokenExpired):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateUsername):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// readFormImage parses a multipart form if needed and reads the named file
// field. A missing file is not an error; the returned slice is nil.
func readFormImage(r *http.Request, field string, maxBytes int64) ([]byte, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, fmt.Errorf("%w: invalid multipart form", domain.ErrInvalidInput)
		}
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s file", domain.ErrInvalidInput, field)
	}
	defer file.Close()
	return readAll(file, maxBytes)
}

func readAll(file multipart.File, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxBytes)
	}
	return data, nil
}

// formValue returns a pointer to the named form value, or nil when absent.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	if vals, ok := r.MultipartForm.Value[field]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}
