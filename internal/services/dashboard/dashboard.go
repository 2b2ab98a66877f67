package dashboard

import (
	"context"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/pkg/errors"
)

var ErrStayNotFound = errors.New("stay not found")

type Storage interface {
	GetStayByID(ctx context.Context, id string) (*model.Stay, error)
	GetDocument(ctx context.Context, guestID string) (*model.Document, error)
	GetPreferences(ctx context.Context, guestID string) (*model.Preferences, error)
	GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error)
}

type Incidents interface {
	ListForGuest(ctx context.Context, guestID string) ([]model.IncidentItem, error)
}

type Service struct {
	storage   Storage
	incidents Incidents
}

func New(storage Storage, incidents Incidents) *Service {
	return &Service{storage: storage, incidents: incidents}
}

func (s *Service) Checklist(ctx context.Context, guestID string) (model.Checklist, error) {
	var cl model.Checklist

	_, err := s.storage.GetDocument(ctx, guestID)
	if cl.Document, err = found(err); err != nil {
		return cl, errors.Wrap(err, "document")
	}

	_, err = s.storage.GetPreferences(ctx, guestID)
	if cl.Preferences, err = found(err); err != nil {
		return cl, errors.Wrap(err, "preferences")
	}

	_, err = s.storage.GetContractByGuest(ctx, guestID)
	if cl.Contract, err = found(err); err != nil {
		return cl, errors.Wrap(err, "contract")
	}

	return cl, nil
}

// Get hides the address and wifi credentials until check-in is complete.
func (s *Service) Get(ctx context.Context, guestID, stayID string) (*model.DashboardResponse, error) {
	stay, err := s.storage.GetStayByID(ctx, stayID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, ErrStayNotFound
		}
		return nil, errors.Wrap(err, "get stay")
	}

	cl, err := s.Checklist(ctx, guestID)
	if err != nil {
		return nil, err
	}

	incidents, err := s.incidents.ListForGuest(ctx, guestID)
	if err != nil {
		return nil, errors.Wrap(err, "incidents")
	}

	info := model.AccommodationInfo{
		PropertyName: stay.PropertyName,
		HostPhone:    stay.HostPhone,
		CheckIn:      stay.CheckIn,
		CheckOut:     stay.CheckOut,
	}
	if cl.Complete() {
		info.Address = stay.Address
		info.WifiName = stay.WifiName
		info.WifiPassword = stay.WifiPassword
	}

	return &model.DashboardResponse{
		Accommodation: info,
		Checklist:     cl,
		Incidents:     incidents,
	}, nil
}

func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrEntityNotFound):
		return false, nil
	}
	return false, err
}
