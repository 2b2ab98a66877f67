package guest

import (
	"context"
	"strings"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/pkg/docid"
	"github.com/Heidric/guest-self-service/pkg/security"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var log zerolog.Logger

var (
	ErrGuestNotFound  = errors.New("guest not found")
	ErrDocumentLocked = errors.New("document cannot change after the contract is signed")
	ErrInvalidPhone   = errors.New("invalid phone number")
	ErrStayNotFound   = errors.New("stay not found")
)

const (
	accessCodeLength = 6
	provisionRetries = 3
)

// DocumentError carries the validator result for a rejected identity document.
type DocumentError struct {
	Result docid.Result
}

func (e *DocumentError) Error() string {
	return e.Result.Error
}

type Storage interface {
	GetGuestByID(ctx context.Context, id string) (*model.Guest, error)
	GetDocument(ctx context.Context, guestID string) (*model.Document, error)
	UpsertDocument(ctx context.Context, doc *model.Document) error
	GetPreferences(ctx context.Context, guestID string) (*model.Preferences, error)
	UpsertPreferences(ctx context.Context, p *model.Preferences) error
	GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error)
	GetStayByID(ctx context.Context, id string) (*model.Stay, error)
	CreateGuest(ctx context.Context, g *model.Guest) error
}

type Metrics interface {
	DocumentValidated(documentType string, res docid.Result)
}

type Service struct {
	storage     Storage
	metrics     Metrics
	phoneRegion string
	now         func() time.Time
}

func New(storage Storage, metrics Metrics, phoneRegion string) *Service {
	log = logger.Log.With().Str("name", "guest-service").Logger()

	return &Service{
		storage:     storage,
		metrics:     metrics,
		phoneRegion: strings.ToUpper(phoneRegion),
		now:         time.Now,
	}
}

// Provision creates a guest for a stay and returns the credentials the host
// hands over to them.
func (s *Service) Provision(ctx context.Context, dto model.ProvisionGuestDTO) (*model.ProvisionGuestResponse, error) {
	if _, err := s.storage.GetStayByID(ctx, dto.StayID); err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, ErrStayNotFound
		}
		return nil, errors.Wrap(err, "get stay")
	}

	accessCode, err := security.GenerateNumericCode(accessCodeLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate access code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(accessCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash access code")
	}

	g := &model.Guest{
		ID:             uuid.NewString(),
		StayID:         dto.StayID,
		Email:          strings.ToLower(strings.TrimSpace(dto.Email)),
		FirstName:      strings.TrimSpace(dto.FirstName),
		LastName:       strings.TrimSpace(dto.LastName),
		Role:           model.RoleGuest,
		AccessCodeHash: string(hash),
	}

	// Reservation codes are random; retry on the rare unique violation.
	for attempt := 1; ; attempt++ {
		if g.ReservationCode, err = security.GenerateReservationCode(); err != nil {
			return nil, errors.Wrap(err, "generate reservation code")
		}

		err = s.storage.CreateGuest(ctx, g)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrAlreadyExists) || attempt == provisionRetries {
			return nil, errors.Wrap(err, "create guest")
		}
	}

	log.Info().Str("guestId", g.ID).Str("stayId", g.StayID).Msg("guest provisioned")

	return &model.ProvisionGuestResponse{
		GuestID:         g.ID,
		ReservationCode: g.ReservationCode,
		AccessCode:      accessCode,
	}, nil
}

// CheckDocument validates a document without storing it.
func (s *Service) CheckDocument(documentType, documentNumber string) docid.Result {
	res := docid.ValidateDocument(documentType, docid.Normalize(documentNumber))
	s.metrics.DocumentValidated(documentType, res)
	return res
}

// RegisterDocument validates and stores the guest document. Storage repeats the
// contract check under a row lock, so a contract signed in between still wins.
func (s *Service) RegisterDocument(ctx context.Context, guestID string, dto model.RegisterDocumentDTO) (*model.DocumentResponse, error) {
	if _, err := s.storage.GetContractByGuest(ctx, guestID); err == nil {
		return nil, ErrDocumentLocked
	} else if !errors.Is(err, storage.ErrEntityNotFound) {
		return nil, errors.Wrap(err, "get contract")
	}

	docType := strings.ToUpper(strings.TrimSpace(dto.DocumentType))
	number := docid.Normalize(dto.DocumentNumber)

	res := s.CheckDocument(docType, number)
	if !res.Valid {
		log.Info().
			Str("guestId", guestID).
			Str("documentType", docType).
			Str("code", string(res.Code)).
			Msg("document rejected")
		return nil, &DocumentError{Result: res}
	}

	formatted, _ := docid.Format(docType, number)

	doc := &model.Document{
		GuestID:      guestID,
		Type:         docType,
		Number:       formatted,
		Nationality:  strings.ToUpper(strings.TrimSpace(dto.Nationality)),
		FirstName:    strings.TrimSpace(dto.FirstName),
		LastName:     strings.TrimSpace(dto.LastName),
		BirthDate:    dto.ParsedBirthDate(),
		RegisteredAt: s.now().UTC(),
	}
	if err := s.storage.UpsertDocument(ctx, doc); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, ErrDocumentLocked
		case errors.Is(err, storage.ErrEntityNotFound):
			return nil, ErrGuestNotFound
		}
		return nil, errors.Wrap(err, "upsert document")
	}

	log.Info().
		Str("guestId", guestID).
		Str("documentType", docType).
		Str("document", docid.Mask(docType, formatted)).
		Msg("document registered")

	return documentResponse(doc), nil
}

func (s *Service) Profile(ctx context.Context, guestID string) (*model.GuestProfileResponse, error) {
	g, err := s.storage.GetGuestByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, errors.Wrap(err, "get guest by id")
	}

	res := &model.GuestProfileResponse{
		ID:        g.ID,
		Email:     g.Email,
		FirstName: g.FirstName,
		LastName:  g.LastName,
	}

	if g.StayID != "" {
		st, err := s.storage.GetStayByID(ctx, g.StayID)
		switch {
		case err == nil:
			res.Stay = &model.StaySummary{
				ID:           st.ID,
				PropertyName: st.PropertyName,
				CheckIn:      st.CheckIn,
				CheckOut:     st.CheckOut,
			}
		case !errors.Is(err, storage.ErrEntityNotFound):
			return nil, errors.Wrap(err, "get stay")
		}
	}

	doc, err := s.storage.GetDocument(ctx, guestID)
	switch {
	case err == nil:
		res.Document = documentResponse(doc)
	case !errors.Is(err, storage.ErrEntityNotFound):
		return nil, errors.Wrap(err, "get document")
	}

	prefs, err := s.storage.GetPreferences(ctx, guestID)
	switch {
	case err == nil:
		res.Preferences = preferencesResponse(prefs)
	case !errors.Is(err, storage.ErrEntityNotFound):
		return nil, errors.Wrap(err, "get preferences")
	}

	return res, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, guestID string, dto model.UpdatePreferencesDTO) (*model.PreferencesResponse, error) {
	phone, err := s.formatPhone(dto.Phone)
	if err != nil {
		return nil, err
	}

	p := &model.Preferences{
		GuestID:     guestID,
		ArrivalTime: dto.ArrivalTime,
		Language:    strings.ToLower(dto.Language),
		Phone:       phone,
		ExtraBeds:   dto.ExtraBeds,
		Notes:       strings.TrimSpace(dto.Notes),
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.storage.UpsertPreferences(ctx, p); err != nil {
		return nil, errors.Wrap(err, "upsert preferences")
	}

	return preferencesResponse(p), nil
}

// formatPhone returns the number in E.164. Numbers without a country prefix
// are read in the configured default region.
func (s *Service) formatPhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), s.phoneRegion)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func documentResponse(doc *model.Document) *model.DocumentResponse {
	return &model.DocumentResponse{
		Type:         doc.Type,
		Number:       docid.Mask(doc.Type, doc.Number),
		Nationality:  doc.Nationality,
		RegisteredAt: doc.RegisteredAt,
	}
}

func preferencesResponse(p *model.Preferences) *model.PreferencesResponse {
	return &model.PreferencesResponse{
		ArrivalTime: p.ArrivalTime,
		Language:    p.Language,
		Phone:       p.Phone,
		ExtraBeds:   p.ExtraBeds,
		Notes:       p.Notes,
		UpdatedAt:   p.UpdatedAt,
	}
}
