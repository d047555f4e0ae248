package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Storage
// failures surface as opaque internal errors; business-rule violations keep
// their explanatory message.
func writeError(w http.ResponseWriter, err error) {
	var domErr *domain.Error
	if !errors.As(err, &domErr) {
		logger.Error("unclassified error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
		return
	}

	switch domErr.Kind {
	case domain.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: domErr.Kind.String(), Message: domErr.Msg})
	case domain.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: domErr.Kind.String(), Message: domErr.Msg})
	case domain.KindInvalidTransition:
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: domErr.Kind.String(), Message: domErr.Msg})
	case domain.KindConflict:
		writeJSON(w, http.StatusConflict, errorBody{Error: domErr.Kind.String(), Message: domErr.Msg})
	default:
		logger.Error("storage error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: domErr.Kind.String(), Message: "internal server error"})
	}
}
