package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/services"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps an error to its status code. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message, RequestID: middleware.GetReqID(r.Context())})
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, creation.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, creation.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, creation.ErrEmptyFile),
		errors.Is(err, creation.ErrAttributeIndex),
		errors.Is(err, creation.ErrInvalidField),
		errors.Is(err, creation.ErrUnknownStep),
		errors.Is(err, services.ErrInvalidRoyaltySplits),
		errors.Is(err, services.ErrInvalidAuction),
		errors.Is(err, services.ErrUnknownCollection),
		errors.Is(err, services.ErrNoAssets),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, creation.ErrStepIncomplete),
		errors.Is(err, creation.ErrNotReady),
		errors.Is(err, creation.ErrSubmissionInFlight),
		errors.Is(err, creation.ErrCollectionNotNew),
		errors.Is(err, creation.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrUnknownListing),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)
