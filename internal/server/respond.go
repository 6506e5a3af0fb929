package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"roster-tracker/internal/domain"
	"roster-tracker/internal/form"

	"github.com/rs/zerolog"
)

type errorBody struct {
	Detail string           `json:"detail"`
	Kind   domain.ErrorKind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates err into a status code. Errors that do not wrap a
// known sentinel are reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	body := errorBody{Detail: err.Error()}
	if status == http.StatusInternalServerError {
		body.Detail = http.StatusText(status)
	} else {
		body.Kind = domain.Kind(err)
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrNoTarget), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, form.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("malformed request")
