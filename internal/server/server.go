package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/Heidric/guest-self-service/pkg/docid"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var log zerolog.Logger

type Auth interface {
	Login(ctx context.Context, reservationCode, accessCode string) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshTokenResponse, error)
	Logout(ctx context.Context) error
	ValidateSession(ctx context.Context) error
}

type Guest interface {
	Provision(ctx context.Context, dto model.ProvisionGuestDTO) (*model.ProvisionGuestResponse, error)
	CheckDocument(documentType, documentNumber string) docid.Result
	RegisterDocument(ctx context.Context, guestID string, dto model.RegisterDocumentDTO) (*model.DocumentResponse, error)
	Profile(ctx context.Context, guestID string) (*model.GuestProfileResponse, error)
	UpdatePreferences(ctx context.Context, guestID string, dto model.UpdatePreferencesDTO) (*model.PreferencesResponse, error)
}

type Contract interface {
	Get(ctx context.Context, guestID string) (*model.ContractResponse, error)
	Sign(ctx context.Context, guestID string, dto model.SignContractDTO) (*model.ContractResponse, error)
}

type Dashboard interface {
	Get(ctx context.Context, guestID, stayID string) (*model.DashboardResponse, error)
}

type Door interface {
	Unlock(ctx context.Context, guestID, stayID string) (*model.UnlockResponse, error)
	IssueCode(ctx context.Context, guestID, stayID string) (*model.DoorCodeResponse, error)
}

type Incidents interface {
	Create(ctx context.Context, guestID, stayID string, dto model.CreateIncidentDTO) (*model.IncidentItem, error)
	ListForGuest(ctx context.Context, guestID string) ([]model.IncidentItem, error)
	List(ctx context.Context, q model.IncidentListQuery) (*model.IncidentListResponse, error)
	UpdateStatus(ctx context.Context, hostID, id string, dto model.UpdateIncidentDTO) (*model.IncidentItem, error)
}

type Health interface {
	Ping(ctx context.Context) error
}

type Metrics interface {
	DashboardClientConnected()
	DashboardClientDisconnected()
	Handler() http.Handler
}

type Services struct {
	Auth      Auth
	Guest     Guest
	Contract  Contract
	Dashboard Dashboard
	Door      Door
	Incidents Incidents
	Health    Health
}

type websocketUpgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request, responseHeader http.Header) (*websocket.Conn, error)
}

type Server struct {
	srv       *http.Server
	router    chi.Router
	auth      Auth
	guest     Guest
	contract  Contract
	dashboard Dashboard
	door      Door
	incidents Incidents
	health    Health
	metrics   Metrics

	wsHub      *ws.Hub
	wsUpgrader websocketUpgrader
}

func NewServer(addr string, svc Services, hub *ws.Hub, metrics Metrics) *Server {
	log = logger.Log.With().Str("name", "http").Logger()

	r := chi.NewRouter()

	s := &Server{
		srv:        &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second},
		router:     r,
		auth:       svc.Auth,
		guest:      svc.Guest,
		contract:   svc.Contract,
		dashboard:  svc.Dashboard,
		door:       svc.Door,
		incidents:  svc.Incidents,
		health:     svc.Health,
		metrics:    metrics,
		wsHub:      hub,
		wsUpgrader: &ws.Upgrader,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, `/metrics`, metrics.Handler())
	r.Get(`/healthz`, s.healthHandler)

	r.Group(func(r chi.Router) {
		r.Post(`/api/v1/auth/login`, s.loginHandler)
		r.Post(`/api/v1/auth/refreshToken`, s.refreshTokenHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(jwt.Authenticator(s.auth))

		r.Post(`/api/v1/auth/logout`, s.logoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleGuest))

			r.Get(`/api/v1/guest`, s.guestProfileHandler)
			r.Put(`/api/v1/guest/document`, s.registerDocumentHandler)
			r.Post(`/api/v1/guest/document/validate`, s.validateDocumentHandler)
			r.Put(`/api/v1/guest/preferences`, s.updatePreferencesHandler)

			r.Get(`/api/v1/contract`, s.contractGetHandler)
			r.Post(`/api/v1/contract/sign`, s.contractSignHandler)

			r.Get(`/api/v1/dashboard`, s.dashboardHandler)
			r.Get(`/api/v1/dashboard/ws`, s.dashboardWSHandler)

			r.Post(`/api/v1/door/unlock`, s.doorUnlockHandler)
			r.Post(`/api/v1/door/code`, s.doorCodeHandler)

			r.Post(`/api/v1/incidents`, s.createIncidentHandler)
			r.Get(`/api/v1/incidents`, s.listGuestIncidentsHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(model.RoleHost))

			r.Post(`/api/v1/host/guests`, s.provisionGuestHandler)
			r.Get(`/api/v1/host/incidents`, s.hostIncidentsHandler)
			r.Put(`/api/v1/host/incidents/{id}`, s.hostUpdateIncidentHandler)
		})
	})

	r.HandleFunc(`/*`, notFoundHandler)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context, runner *errgroup.Group) {
	log.Info().Str("addr", s.srv.Addr).Msg("Http server started.")

	runner.Go(func() error {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Http server stopped.")

	nctx, stop := context.WithTimeout(context.WithoutCancel(ctx), time.Second*10)
	defer stop()

	return s.srv.Shutdown(nctx)
}
