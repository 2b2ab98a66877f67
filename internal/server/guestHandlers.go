package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/guest"
)

func (s *Server) guestProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	res, err := s.guest.Profile(ctx, claims.ID)
	if err != nil {
		switch {
		case errors.Is(err, guest.ErrGuestNotFound):
			NotFoundError(w, ErrGuestNotFound)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error getting guest profile")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) registerDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	var dto model.RegisterDocumentDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.guest.RegisterDocument(ctx, claims.ID, dto)
	if err != nil {
		var docErr *guest.DocumentError
		switch {
		case errors.As(err, &docErr):
			DocumentError(w, docErr.Result)
			return
		case errors.Is(err, guest.ErrDocumentLocked):
			ConflictError(w, ErrDocumentLocked)
		case errors.Is(err, guest.ErrGuestNotFound):
			NotFoundError(w, ErrGuestNotFound)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error registering document")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// validateDocumentHandler is a dry run used by the check-in form while the
// guest types; nothing is stored.
func (s *Server) validateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var dto model.ValidateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		ParsingError(w)
		return
	}

	writeJSON(w, http.StatusOK, s.guest.CheckDocument(dto.DocumentType, dto.DocumentNumber))
}

func (s *Server) updatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	var dto model.UpdatePreferencesDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.guest.UpdatePreferences(ctx, claims.ID, dto)
	if err != nil {
		switch {
		case errors.Is(err, guest.ErrInvalidPhone):
			ValidationError(w, map[string]string{"phone": model.ErrInvalidField})
			return
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error updating preferences")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
