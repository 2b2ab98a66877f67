package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/contract"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	guests    map[string]*model.Guest
	docs      map[string]*model.Document
	contracts map[string]*model.Contract

	// committed is the document found under the lock at insert time, when
	// it differs from what GetDocument returned.
	committed *model.Document
}

func (m *memStore) GetGuestByID(ctx context.Context, id string) (*model.Guest, error) {
	if g, ok := m.guests[id]; ok {
		return g, nil
	}
	return nil, storage.ErrEntityNotFound
}

func (m *memStore) GetDocument(ctx context.Context, guestID string) (*model.Document, error) {
	if d, ok := m.docs[guestID]; ok {
		return d, nil
	}
	return nil, storage.ErrEntityNotFound
}

func (m *memStore) GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error) {
	if c, ok := m.contracts[guestID]; ok {
		return c, nil
	}
	return nil, storage.ErrEntityNotFound
}

func (m *memStore) CreateContract(ctx context.Context, c *model.Contract) error {
	if _, ok := m.contracts[c.GuestID]; ok {
		return storage.ErrAlreadyExists
	}
	if d := m.committed; d != nil && (d.Type != c.DocumentType || d.Number != c.DocumentNumber) {
		return storage.ErrConflict
	}
	m.contracts[c.GuestID] = c
	return nil
}

type recorder struct {
	events []string
}

func (r *recorder) Publish(stayID, eventType string, data any) error {
	r.events = append(r.events, stayID+":"+eventType)
	return nil
}

type countMetrics struct{ signed int }

func (c *countMetrics) ContractSigned() { c.signed++ }

func newStore() *memStore {
	return &memStore{
		guests:    map[string]*model.Guest{"g1": {ID: "g1", StayID: "st1"}},
		docs:      map[string]*model.Document{},
		contracts: map[string]*model.Contract{},
	}
}

func TestSign(t *testing.T) {
	store := newStore()
	store.docs["g1"] = &model.Document{GuestID: "g1", Type: "DNI", Number: "12345678Z", RegisteredAt: time.Now()}
	m := &countMetrics{}
	events := &recorder{}
	svc := contract.New(store, events, m)

	res, err := svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "  Ana   García ", AcceptTerms: true})
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusSigned, res.Status)
	assert.Equal(t, "Ana García", res.SignerName)
	assert.Equal(t, "*****678Z", res.Document)
	require.NotNil(t, res.SignedAt)
	assert.Equal(t, 1, m.signed)
	assert.Equal(t, []string{"st1:" + ws.EventContractSigned}, events.events)

	stored := store.contracts["g1"]
	assert.Equal(t, "st1", stored.StayID)
	assert.Equal(t, "12345678Z", stored.DocumentNumber)

	_, err = svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrAlreadySigned)
	assert.Equal(t, 1, m.signed)
	assert.Len(t, events.events, 1)
}

func TestSignRequiresDocument(t *testing.T) {
	svc := contract.New(newStore(), &recorder{}, &countMetrics{})

	_, err := svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrDocumentMissing)

	_, err = svc.Sign(context.Background(), "ghost", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrGuestNotFound)
}

func TestSignRejectsStaleDocument(t *testing.T) {
	store := newStore()
	store.docs["g1"] = &model.Document{GuestID: "g1", Type: "DNI", Number: "12345678A"}
	svc := contract.New(store, &recorder{}, &countMetrics{})

	_, err := svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrDocumentMissing)
}

func TestSignDocumentChangedConcurrently(t *testing.T) {
	store := newStore()
	store.docs["g1"] = &model.Document{GuestID: "g1", Type: "DNI", Number: "12345678Z"}
	store.committed = &model.Document{GuestID: "g1", Type: "DNI", Number: "87654321X"}
	m := &countMetrics{}
	events := &recorder{}
	svc := contract.New(store, events, m)

	_, err := svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrDocumentChanged)
	assert.Zero(t, m.signed)
	assert.Empty(t, store.contracts)
	assert.Empty(t, events.events)
}

func TestSignDocumentTypeChangedConcurrently(t *testing.T) {
	store := newStore()
	store.docs["g1"] = &model.Document{GuestID: "g1", Type: "PASSPORT", Number: "AB1234"}
	store.committed = &model.Document{GuestID: "g1", Type: "OTHER", Number: "AB1234"}
	svc := contract.New(store, &recorder{}, &countMetrics{})

	_, err := svc.Sign(context.Background(), "g1", model.SignContractDTO{FullName: "Ana", AcceptTerms: true})
	assert.ErrorIs(t, err, contract.ErrDocumentChanged)
	assert.Empty(t, store.contracts)
}

func TestGet(t *testing.T) {
	store := newStore()
	svc := contract.New(store, &recorder{}, &countMetrics{})

	res, err := svc.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusPending, res.Status)
	assert.Nil(t, res.SignedAt)

	store.contracts["g1"] = &model.Contract{GuestID: "g1", DocumentType: "NIE", DocumentNumber: "X1234567L", SignerName: "Ana"}
	res, err = svc.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusSigned, res.Status)
	assert.Equal(t, "X****67L", res.Document)
}
