package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"go.uber.org/zap"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are already written, nothing left to do for the client.
			_ = err
		}
	}
}

// respondWithDomainError maps the domain error taxonomy onto HTTP statuses.
func respondWithDomainError(w http.ResponseWriter, err error, defaultMessage string, log *logger.Logger) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRepository), errors.Is(err, domain.ErrStorage):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		log.Error("Request failed", zap.Error(err), zap.Int("status", status))
	} else {
		log.Warn("Request rejected", zap.Error(err), zap.Int("status", status))
	}
	respondWithJSON(w, status, map[string]string{"error": defaultMessage, "detail": err.Error()})
}

func parseIntQueryParam(r *http.Request, key string, defaultValue int32) int32 {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	valInt, err := strconv.ParseInt(valStr, 10, 32)
	if err != nil {
		return defaultValue
	}
	return int32(valInt)
}
