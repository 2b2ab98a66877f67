package incident

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

const (
	recentLimit    = 20
	updateAttempts = 3
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrAlreadyResolved  = errors.New("incident already resolved")
	ErrInvalidStatus    = errors.New("invalid status transition")
)

type Filter struct {
	Status   string
	Category string
	StayID   string
	GuestID  string
}

type Storage interface {
	CreateIncident(ctx context.Context, in *model.Incident) error
	GetIncidentByID(ctx context.Context, id string) (*model.Incident, error)
	ListIncidents(ctx context.Context, f Filter, limit, offset int) ([]model.Incident, error)
	CountIncidents(ctx context.Context, f Filter) (int64, error)
	UpdateIncidentStatus(ctx context.Context, id, from, to, handledBy string, updatedAt time.Time) error
}

type Publisher interface {
	Publish(stayID, eventType string, data any) error
}

type Metrics interface {
	IncidentCreated(category string)
}

type Service struct {
	storage Storage
	events  Publisher
	metrics Metrics
	now     func() time.Time
}

func New(storage Storage, events Publisher, metrics Metrics) *Service {
	log = logger.Log.With().Str("name", "incident-service").Logger()
	return &Service{storage: storage, events: events, metrics: metrics, now: time.Now}
}

func (s *Service) Create(ctx context.Context, guestID, stayID string, dto model.CreateIncidentDTO) (*model.IncidentItem, error) {
	now := s.now().UTC()
	in := &model.Incident{
		ID:          uuid.NewString(),
		StayID:      stayID,
		GuestID:     guestID,
		Category:    dto.Category,
		Description: strings.TrimSpace(dto.Description),
		Status:      model.IncidentStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.CreateIncident(ctx, in); err != nil {
		return nil, errors.Wrap(err, "create incident")
	}

	s.metrics.IncidentCreated(in.Category)

	item := model.NewIncidentItem(*in)
	s.publish(stayID, ws.EventIncidentCreated, item)
	log.Info().Str("incidentId", in.ID).Str("stayId", stayID).Str("category", in.Category).Msg("incident reported")

	return &item, nil
}

// ListForGuest returns the most recent incidents the guest reported.
func (s *Service) ListForGuest(ctx context.Context, guestID string) ([]model.IncidentItem, error) {
	rows, err := s.storage.ListIncidents(ctx, Filter{GuestID: guestID}, recentLimit, 0)
	if err != nil {
		return nil, errors.Wrap(err, "list incidents")
	}

	items := make([]model.IncidentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.NewIncidentItem(r))
	}
	return items, nil
}

func (s *Service) List(ctx context.Context, q model.IncidentListQuery) (*model.IncidentListResponse, error) {
	page := 1
	if q.Page != nil {
		page = *q.Page
	}
	size := 50
	if q.PageSize != nil {
		size = *q.PageSize
	}

	filter := Filter{Status: q.Status, Category: q.Category, StayID: q.StayID}

	total, err := s.storage.CountIncidents(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "count")
	}

	if total == 0 {
		return &model.IncidentListResponse{Items: []model.IncidentItem{}, Page: page, PageSize: size, TotalPages: 0}, nil
	}

	rows, err := s.storage.ListIncidents(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}

	items := make([]model.IncidentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.NewIncidentItem(r))
	}

	return &model.IncidentListResponse{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// UpdateStatus moves an incident forward: Open -> InProgress -> Resolved.
// Open -> Resolved is allowed; going back is not. The write only lands if the
// status read is still current; otherwise the transition is checked again
// against the fresh row.
func (s *Service) UpdateStatus(ctx context.Context, hostID, id string, dto model.UpdateIncidentDTO) (*model.IncidentItem, error) {
	for attempt := 1; ; attempt++ {
		in, err := s.storage.GetIncidentByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrEntityNotFound) {
				return nil, ErrIncidentNotFound
			}
			return nil, errors.Wrap(err, "get incident")
		}

		if in.Status == model.IncidentStatusResolved {
			return nil, ErrAlreadyResolved
		}
		if statusRank(dto.Status) <= statusRank(in.Status) {
			return nil, ErrInvalidStatus
		}

		now := s.now().UTC()
		err = s.storage.UpdateIncidentStatus(ctx, id, in.Status, dto.Status, hostID, now)
		if errors.Is(err, storage.ErrConflict) {
			if attempt == updateAttempts {
				return nil, ErrInvalidStatus
			}
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "update incident status")
		}

		in.Status = dto.Status
		in.HandledBy = &hostID
		in.UpdatedAt = now

		item := model.NewIncidentItem(*in)
		s.publish(in.StayID, ws.EventIncidentUpdated, item)

		return &item, nil
	}
}

func (s *Service) publish(stayID, eventType string, data any) {
	if err := s.events.Publish(stayID, eventType, data); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("publish")
	}
}

func statusRank(status string) int {
	switch status {
	case model.IncidentStatusOpen:
		return 0
	case model.IncidentStatusInProgress:
		return 1
	case model.IncidentStatusResolved:
		return 2
	}
	return -1
}
