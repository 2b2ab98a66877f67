package server

import (
	"errors"
	"net/http"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/services/dashboard"
	"github.com/Heidric/guest-self-service/internal/ws"
)

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := jwt.Claims(ctx)
	if !ok {
		UnauthorizedError(w)
		return
	}

	res, err := s.dashboard.Get(ctx, claims.ID, claims.StayID)
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrStayNotFound):
			NotFoundError(w, ErrStayNotFound)
		default:
			InternalError(w)
		}
		log.Error().Err(err).Msg("Error getting dashboard")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// dashboardWSHandler streams stay events (incidents, door, contract) to the
// guest's open dashboards.
func (s *Server) dashboardWSHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.Claims(r.Context())
	if !ok {
		UnauthorizedError(w)
		return
	}

	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error upgrading connection")
		return
	}

	room := s.wsHub.EnsureRoom(claims.StayID)
	client := ws.NewClient(conn, room, s.metrics.DashboardClientDisconnected)

	room.Add(client)
	s.metrics.DashboardClientConnected()

	go client.ReadPump()
	go client.WritePump()
}
