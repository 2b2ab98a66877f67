package server

import (
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/contract"
)

func (s *Server) contractGetHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	res, err := s.contract.Get(ctx, claims.ID)
	if err != nil {
		log.Error().Err(err).Msg("Error getting contract")
		InternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) contractSignHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	var dto model.SignContractDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.contract.Sign(ctx, claims.ID, dto)
	if err != nil {
		switch {
		case errors.Is(err, contract.ErrAlreadySigned):
			ConflictError(w, ErrContractAlreadySigned)
		case errors.Is(err, contract.ErrDocumentChanged):
			ConflictError(w, ErrDocumentChanged)
		case errors.Is(err, contract.ErrDocumentMissing):
			LogicError(w, ErrDocumentMissing)
		case errors.Is(err, contract.ErrGuestNotFound):
			NotFoundError(w, ErrGuestNotFound)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error signing contract")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
