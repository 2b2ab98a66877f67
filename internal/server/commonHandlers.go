package server

import (
	"encoding/json"
	"net/http"
)

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	NotFoundError(w, "ENDPOINT_NOT_FOUND")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, res any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// decode reads a JSON body into dto and runs its validation, writing the
// error response itself when either step fails.
func decode[T interface{ Validate() map[string]string }](w http.ResponseWriter, r *http.Request, dto T) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		log.Error().Err(err).Msg("Error parsing request body")
		ParsingError(w)
		return false
	}

	if errs := dto.Validate(); len(errs) > 0 {
		log.Info().Msgf("Error validating request body: %v", errs)
		ValidationError(w, errs)
		return false
	}
	return true
}
