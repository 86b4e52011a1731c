package server

import (
	"encoding/json"
	"net/http"

	"github.com/clipstream/authcore/auth"
	"github.com/pkg/errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a service error onto the wire. Dependency failures get a
// generic message so backend details stay out of responses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var svcErr *auth.Error
	if !errors.As(err, &svcErr) {
		s.logger.Error().Err(err).Msg("unclassified error")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "internal_error",
			Message: "internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	message := svcErr.Message
	switch svcErr.Kind {
	case auth.KindValidation:
		status = http.StatusBadRequest
	case auth.KindConflict:
		status = http.StatusConflict
	case auth.KindAuthentication:
		status = http.StatusUnauthorized
	case auth.KindDependency:
		status = http.StatusServiceUnavailable
		message = "service temporarily unavailable"
		s.logger.Error().Err(err).Msg("dependency failure")
	}

	writeJSON(w, status, errorBody{
		Error:   string(svcErr.Kind),
		Message: message,
	})
}
