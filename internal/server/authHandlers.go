package server

import (
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/auth"
)

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var dto model.LoginDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.auth.Login(r.Context(), dto.ReservationCode, dto.AccessCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrGuestNotFound), errors.Is(err, auth.ErrInvalidCredentials):
			// Unknown reservation and wrong code look the same from outside.
			UnauthorizedError(w)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error login")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var dto model.RefreshTokenDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.auth.RefreshToken(r.Context(), dto.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenNotFound):
			LogicError(w, ErrTokenInvalid)
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrGuestNotFound):
			UnauthorizedError(w)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error refreshing token")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			UnauthorizedError(w)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error logout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
