package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/dashboard"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	stay     *model.Stay
	doc      *model.Document
	prefs    *model.Preferences
	contract *model.Contract
	prefsErr error
}

func (m *memStore) GetStayByID(ctx context.Context, id string) (*model.Stay, error) {
	if m.stay == nil || m.stay.ID != id {
		return nil, storage.ErrEntityNotFound
	}
	return m.stay, nil
}

func (m *memStore) GetDocument(ctx context.Context, guestID string) (*model.Document, error) {
	if m.doc == nil {
		return nil, storage.ErrEntityNotFound
	}
	return m.doc, nil
}

func (m *memStore) GetPreferences(ctx context.Context, guestID string) (*model.Preferences, error) {
	if m.prefsErr != nil {
		return nil, m.prefsErr
	}
	if m.prefs == nil {
		return nil, storage.ErrEntityNotFound
	}
	return m.prefs, nil
}

func (m *memStore) GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error) {
	if m.contract == nil {
		return nil, storage.ErrEntityNotFound
	}
	return m.contract, nil
}

type noIncidents struct{}

func (noIncidents) ListForGuest(ctx context.Context, guestID string) ([]model.IncidentItem, error) {
	return []model.IncidentItem{}, nil
}

func newStore() *memStore {
	return &memStore{stay: &model.Stay{
		ID:           "st1",
		PropertyName: "Casa Azul",
		Address:      "Calle Mayor 1, Madrid",
		WifiName:     "casa-azul",
		WifiPassword: "paella2026",
		HostPhone:    "+34600000000",
		CheckIn:      time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, 7, 8, 11, 0, 0, 0, time.UTC),
	}}
}

func TestDashboardHidesSecretsUntilComplete(t *testing.T) {
	store := newStore()
	store.doc = &model.Document{GuestID: "g1"}
	svc := dashboard.New(store, noIncidents{})

	res, err := svc.Get(context.Background(), "g1", "st1")
	require.NoError(t, err)
	assert.Equal(t, model.Checklist{Document: true}, res.Checklist)
	assert.Equal(t, "Casa Azul", res.Accommodation.PropertyName)
	assert.Empty(t, res.Accommodation.WifiPassword)
	assert.Empty(t, res.Accommodation.Address)
	assert.NotNil(t, res.Incidents)

	store.prefs = &model.Preferences{GuestID: "g1"}
	store.contract = &model.Contract{GuestID: "g1"}

	res, err = svc.Get(context.Background(), "g1", "st1")
	require.NoError(t, err)
	assert.True(t, res.Checklist.Complete())
	assert.Equal(t, "paella2026", res.Accommodation.WifiPassword)
	assert.Equal(t, "Calle Mayor 1, Madrid", res.Accommodation.Address)
}

func TestDashboardErrors(t *testing.T) {
	store := newStore()
	svc := dashboard.New(store, noIncidents{})

	_, err := svc.Get(context.Background(), "g1", "other")
	assert.ErrorIs(t, err, dashboard.ErrStayNotFound)

	store.prefsErr = errors.New("connection reset")
	_, err = svc.Checklist(context.Background(), "g1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "preferences")
}
