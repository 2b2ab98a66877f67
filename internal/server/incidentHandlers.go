package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/incident"
	"github.com/go-chi/chi"
)

func (s *Server) createIncidentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	var dto model.CreateIncidentDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.incidents.Create(ctx, claims.ID, claims.StayID, dto)
	if err != nil {
		log.Error().Err(err).Msg("Error creating incident")
		InternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listGuestIncidentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	items, err := s.incidents.ListForGuest(ctx, claims.ID)
	if err != nil {
		log.Error().Err(err).Msg("Error listing incidents")
		InternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) hostIncidentsHandler(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	var q model.IncidentListQuery
	if v := qp.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			ValidationError(w, map[string]string{"page": model.ErrInvalidField})
			return
		}
		q.Page = &n
	}
	if v := qp.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			ValidationError(w, map[string]string{"pageSize": model.ErrInvalidField})
			return
		}
		q.PageSize = &n
	}
	q.Status = qp.Get("status")
	q.Category = qp.Get("category")
	q.StayID = qp.Get("stayId")

	if errs := q.Validate(); len(errs) > 0 {
		ValidationError(w, errs)
		return
	}

	res, err := s.incidents.List(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("Error listing incidents")
		InternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) hostUpdateIncidentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequestError(w)
		return
	}

	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	var dto model.UpdateIncidentDTO
	if !decode(w, r, &dto) {
		return
	}

	res, err := s.incidents.UpdateStatus(ctx, claims.ID, id, dto)
	if err != nil {
		switch {
		case errors.Is(err, incident.ErrIncidentNotFound):
			NotFoundError(w, ErrIncidentNotFound)
		case errors.Is(err, incident.ErrAlreadyResolved):
			ConflictError(w, ErrIncidentResolved)
		case errors.Is(err, incident.ErrInvalidStatus):
			LogicError(w, ErrInvalidTransition)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error updating incident")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
