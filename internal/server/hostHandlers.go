package server

import (
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/guest"
)

func (s *Server) provisionGuestHandler(w http.ResponseWriter, r *http.Request) {
	var dto model.ProvisionGuestDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.guest.Provision(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, guest.ErrStayNotFound):
			NotFoundError(w, ErrStayNotFound)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error provisioning guest")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
