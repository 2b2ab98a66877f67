package server

import (
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/services/door"
)

func (s *Server) doorUnlockHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	res, err := s.door.Unlock(ctx, claims.ID, claims.StayID)
	if err != nil {
		doorError(w, err)
		log.Error().Err(err).Msg("Error unlocking door")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) doorCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	res, err := s.door.IssueCode(ctx, claims.ID, claims.StayID)
	if err != nil {
		doorError(w, err)
		log.Error().Err(err).Msg("Error issuing door code")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func doorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, door.ErrStayNotFound):
		NotFoundError(w, ErrStayNotFound)
	case errors.Is(err, door.ErrChecklistIncomplete):
		ForbiddenError(w, ErrChecklistIncomplete)
	case errors.Is(err, door.ErrOutsideStay):
		ForbiddenError(w, ErrOutsideStay)
	default:
		InternalError(w)
	}
}
