package door

import (
	"context"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/Heidric/guest-self-service/pkg/security"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var log zerolog.Logger

const doorCodeLength = 6

var (
	ErrStayNotFound        = errors.New("stay not found")
	ErrChecklistIncomplete = errors.New("check-in steps not completed")
	ErrOutsideStay         = errors.New("outside of the stay dates")
)

type Storage interface {
	GetStayByID(ctx context.Context, id string) (*model.Stay, error)
	InsertUnlockEvent(ctx context.Context, ev *model.UnlockEvent) error
	UpsertDoorCode(ctx context.Context, code *model.DoorCode) error
}

// Checklist reports which check-in steps a guest has completed.
type Checklist interface {
	Checklist(ctx context.Context, guestID string) (model.Checklist, error)
}

type Publisher interface {
	Publish(stayID, eventType string, data any) error
}

type Metrics interface {
	DoorUnlocked(result string)
	DoorCodeIssued()
}

type Service struct {
	storage   Storage
	checklist Checklist
	events    Publisher
	metrics   Metrics
	codeTTL   time.Duration
	now       func() time.Time
}

func New(storage Storage, checklist Checklist, events Publisher, metrics Metrics, codeTTL time.Duration) *Service {
	log = logger.Log.With().Str("name", "door-service").Logger()

	return &Service{
		storage:   storage,
		checklist: checklist,
		events:    events,
		metrics:   metrics,
		codeTTL:   codeTTL,
		now:       time.Now,
	}
}

// Unlock opens the door remotely for a guest that completed check-in.
func (s *Service) Unlock(ctx context.Context, guestID, stayID string) (*model.UnlockResponse, error) {
	now, err := s.authorize(ctx, guestID, stayID)
	if err != nil {
		s.metrics.DoorUnlocked(deniedResult(err))
		return nil, err
	}

	ev := &model.UnlockEvent{
		ID:        uuid.NewString(),
		StayID:    stayID,
		GuestID:   guestID,
		Method:    model.UnlockMethodRemote,
		CreatedAt: now,
	}
	if err := s.storage.InsertUnlockEvent(ctx, ev); err != nil {
		s.metrics.DoorUnlocked("error")
		return nil, errors.Wrap(err, "insert unlock event")
	}

	s.metrics.DoorUnlocked("ok")
	if err := s.events.Publish(stayID, ws.EventDoorUnlocked, map[string]any{"guestId": guestID, "at": now}); err != nil {
		log.Error().Err(err).Msg("publish door event")
	}
	log.Info().Str("guestId", guestID).Str("stayId", stayID).Msg("door unlocked")

	return &model.UnlockResponse{UnlockedAt: now}, nil
}

// IssueCode creates a one-time keypad code. Only its hash is stored.
func (s *Service) IssueCode(ctx context.Context, guestID, stayID string) (*model.DoorCodeResponse, error) {
	now, err := s.authorize(ctx, guestID, stayID)
	if err != nil {
		return nil, err
	}

	code, err := security.GenerateNumericCode(doorCodeLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash code")
	}

	expiresAt := now.Add(s.codeTTL)
	if err := s.storage.UpsertDoorCode(ctx, &model.DoorCode{
		StayID:    stayID,
		GuestID:   guestID,
		CodeHash:  string(hash),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, errors.Wrap(err, "store code")
	}

	s.metrics.DoorCodeIssued()
	return &model.DoorCodeResponse{Code: code, ExpiresAt: expiresAt}, nil
}

func (s *Service) authorize(ctx context.Context, guestID, stayID string) (time.Time, error) {
	stay, err := s.storage.GetStayByID(ctx, stayID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return time.Time{}, ErrStayNotFound
		}
		return time.Time{}, errors.Wrap(err, "get stay")
	}

	cl, err := s.checklist.Checklist(ctx, guestID)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "checklist")
	}
	if !cl.Complete() {
		return time.Time{}, ErrChecklistIncomplete
	}

	now := s.now().UTC()
	if !stay.Within(now) {
		return time.Time{}, ErrOutsideStay
	}

	return now, nil
}

func deniedResult(err error) string {
	switch {
	case errors.Is(err, ErrChecklistIncomplete):
		return "incomplete"
	case errors.Is(err, ErrOutsideStay):
		return "outside_stay"
	}
	return "error"
}
