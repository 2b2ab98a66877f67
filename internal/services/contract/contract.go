package contract

import (
	"context"
	"strings"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/Heidric/guest-self-service/pkg/docid"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

var (
	ErrGuestNotFound   = errors.New("guest not found")
	ErrDocumentMissing = errors.New("identity document not registered")
	ErrAlreadySigned   = errors.New("contract already signed")
	ErrDocumentChanged = errors.New("identity document changed while signing")
)

type Storage interface {
	GetGuestByID(ctx context.Context, id string) (*model.Guest, error)
	GetDocument(ctx context.Context, guestID string) (*model.Document, error)
	GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error)
	CreateContract(ctx context.Context, c *model.Contract) error
}

type Publisher interface {
	Publish(stayID, eventType string, data any) error
}

type Metrics interface {
	ContractSigned()
}

type Service struct {
	storage Storage
	events  Publisher
	metrics Metrics
	now     func() time.Time
}

func New(storage Storage, events Publisher, metrics Metrics) *Service {
	log = logger.Log.With().Str("name", "contract-service").Logger()
	return &Service{storage: storage, events: events, metrics: metrics, now: time.Now}
}

func (s *Service) Get(ctx context.Context, guestID string) (*model.ContractResponse, error) {
	c, err := s.storage.GetContractByGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return &model.ContractResponse{Status: model.ContractStatusPending}, nil
		}
		return nil, errors.Wrap(err, "get contract")
	}
	return contractResponse(c), nil
}

// Sign records the guest's acceptance of the rental contract together with a
// snapshot of the identity document it was signed with.
func (s *Service) Sign(ctx context.Context, guestID string, dto model.SignContractDTO) (*model.ContractResponse, error) {
	g, err := s.storage.GetGuestByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, errors.Wrap(err, "get guest")
	}

	if _, err := s.storage.GetContractByGuest(ctx, guestID); err == nil {
		return nil, ErrAlreadySigned
	} else if !errors.Is(err, storage.ErrEntityNotFound) {
		return nil, errors.Wrap(err, "get contract")
	}

	doc, err := s.storage.GetDocument(ctx, guestID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, ErrDocumentMissing
		}
		return nil, errors.Wrap(err, "get document")
	}

	// Documents are validated on registration; re-check in case the rules changed since.
	if res := docid.ValidateDocument(doc.Type, doc.Number); !res.Valid {
		return nil, ErrDocumentMissing
	}

	c := &model.Contract{
		ID:             uuid.NewString(),
		StayID:         g.StayID,
		GuestID:        guestID,
		SignerName:     strings.Join(strings.Fields(dto.FullName), " "),
		DocumentType:   doc.Type,
		DocumentNumber: doc.Number,
		SignedAt:       s.now().UTC(),
	}
	if err := s.storage.CreateContract(ctx, c); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, ErrAlreadySigned
		case errors.Is(err, storage.ErrEntityNotFound):
			return nil, ErrDocumentMissing
		case errors.Is(err, storage.ErrConflict):
			return nil, ErrDocumentChanged
		}
		return nil, errors.Wrap(err, "create contract")
	}

	s.metrics.ContractSigned()
	log.Info().Str("guestId", guestID).Str("contractId", c.ID).Msg("contract signed")

	res := contractResponse(c)
	if err := s.events.Publish(c.StayID, ws.EventContractSigned, map[string]string{"guestId": guestID}); err != nil {
		log.Error().Err(err).Str("event", ws.EventContractSigned).Msg("publish")
	}

	return res, nil
}

func contractResponse(c *model.Contract) *model.ContractResponse {
	signedAt := c.SignedAt
	return &model.ContractResponse{
		Status:     model.ContractStatusSigned,
		SignerName: c.SignerName,
		Document:   docid.Mask(c.DocumentType, c.DocumentNumber),
		SignedAt:   &signedAt,
	}
}
