package handler

import (
	"crypto/md5"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"eventvote/internal/domain"
	"eventvote/internal/middleware"
	"eventvote/pkg/errors"
	"eventvote/pkg/logger"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps err onto the JSON error envelope. Infrastructure errors
// are logged; domain failures are part of normal operation and are not.
func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	requestID := middleware.GetRequestID(r.Context())
	appErr := toAppError(err)
	if appErr.Type == errors.ErrorTypeInternal {
		log.WithError(err).WithFields(map[string]interface{}{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("Request failed")
	}
	errors.Write(w, appErr, requestID)
}

func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case domain.IsEligibilityError(err):
		return errors.NewEligibilityError(capitalize(err.Error()), domain.EligibilityReason(err))
	case stderrors.Is(err, domain.ErrInvalidRating),
		stderrors.Is(err, domain.ErrMissingField),
		stderrors.Is(err, domain.ErrWeakPassword):
		return errors.NewValidationError(capitalize(err.Error()), nil)
	case stderrors.Is(err, domain.ErrTeamNotFound),
		stderrors.Is(err, domain.ErrVoteNotFound),
		stderrors.Is(err, domain.ErrAccountNotFound):
		return errors.NewNotFoundError(capitalize(err.Error()))
	case stderrors.Is(err, domain.ErrEmailTaken):
		return errors.NewConflictError(capitalize(err.Error()))
	case stderrors.Is(err, domain.ErrInvalidCredentials):
		return errors.NewAuthenticationError(capitalize(err.Error()))
	default:
		return errors.NewInternalError("Internal server error", err)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewValidationError("Request body is required", nil)
		}
		return errors.NewValidationError("Invalid request body", map[string]interface{}{"cause": err.Error()})
	}
	return nil
}

func generateETag(data interface{}) string {
	body, _ := json.Marshal(data)
	return fmt.Sprintf(`"%x"`, md5.Sum(body))
}
