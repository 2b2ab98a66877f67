package incident_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/incident"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/internal/ws"
	"github.com/stretchr/testify/suite"
)

type memStore struct {
	mu        sync.Mutex
	incidents map[string]*model.Incident

	// concurrentWrite runs once inside the next status update, before the
	// status comparison, standing in for another host's write.
	concurrentWrite func(in *model.Incident)
}

func (m *memStore) CreateIncident(ctx context.Context, in *model.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *in
	m.incidents[in.ID] = &cp
	return nil
}

func (m *memStore) GetIncidentByID(ctx context.Context, id string) (*model.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incidents[id]
	if !ok {
		return nil, storage.ErrEntityNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *memStore) filtered(f incident.Filter) []model.Incident {
	var out []model.Incident
	for _, in := range m.incidents {
		if f.Status != "" && in.Status != f.Status {
			continue
		}
		if f.Category != "" && in.Category != f.Category {
			continue
		}
		if f.StayID != "" && in.StayID != f.StayID {
			continue
		}
		if f.GuestID != "" && in.GuestID != f.GuestID {
			continue
		}
		out = append(out, *in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListIncidents(ctx context.Context, f incident.Filter, limit, offset int) ([]model.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.filtered(f)
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *memStore) CountIncidents(ctx context.Context, f incident.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(f))), nil
}

func (m *memStore) UpdateIncidentStatus(ctx context.Context, id, from, to, handledBy string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incidents[id]
	if ok && m.concurrentWrite != nil {
		m.concurrentWrite(in)
		m.concurrentWrite = nil
	}
	if !ok || in.Status != from {
		return storage.ErrConflict
	}
	in.Status = to
	in.HandledBy = &handledBy
	in.UpdatedAt = updatedAt
	return nil
}

type recorder struct {
	events []string
}

func (r *recorder) Publish(stayID, eventType string, data any) error {
	r.events = append(r.events, stayID+":"+eventType)
	return nil
}

type countMetrics map[string]int

func (c countMetrics) IncidentCreated(category string) { c[category]++ }

type IncidentSuite struct {
	suite.Suite
	store   *memStore
	events  *recorder
	metrics countMetrics
	svc     *incident.Service
}

func TestIncidentSuite(t *testing.T) {
	suite.Run(t, new(IncidentSuite))
}

func (s *IncidentSuite) SetupTest() {
	s.store = &memStore{incidents: map[string]*model.Incident{}}
	s.events = &recorder{}
	s.metrics = countMetrics{}
	s.svc = incident.New(s.store, s.events, s.metrics)
}

func (s *IncidentSuite) create(guestID, stayID, category string) *model.IncidentItem {
	item, err := s.svc.Create(context.Background(), guestID, stayID, model.CreateIncidentDTO{
		Category:    category,
		Description: "  The dishwasher leaks  ",
	})
	s.Require().NoError(err)
	return item
}

func (s *IncidentSuite) TestCreate() {
	item := s.create("g1", "st1", model.IncidentCategoryAppliance)

	s.Equal(model.IncidentStatusOpen, item.Status)
	s.Equal("The dishwasher leaks", item.Description)
	s.Equal([]string{"st1:" + ws.EventIncidentCreated}, s.events.events)
	s.Equal(1, s.metrics[model.IncidentCategoryAppliance])

	items, err := s.svc.ListForGuest(context.Background(), "g1")
	s.Require().NoError(err)
	s.Len(items, 1)

	items, err = s.svc.ListForGuest(context.Background(), "g2")
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *IncidentSuite) TestListPagination() {
	for i := 0; i < 25; i++ {
		s.create(fmt.Sprintf("g%d", i%3), "st1", model.IncidentCategoryNoise)
	}
	s.create("g9", "st2", model.IncidentCategoryCleaning)

	page, size := 3, 10
	res, err := s.svc.List(context.Background(), model.IncidentListQuery{Page: &page, PageSize: &size, StayID: "st1"})
	s.Require().NoError(err)
	s.Equal(3, res.TotalPages)
	s.Len(res.Items, 5)

	res, err = s.svc.List(context.Background(), model.IncidentListQuery{Category: model.IncidentCategoryCleaning})
	s.Require().NoError(err)
	s.Equal(1, res.TotalPages)
	s.Equal(50, res.PageSize)

	res, err = s.svc.List(context.Background(), model.IncidentListQuery{Status: model.IncidentStatusResolved})
	s.Require().NoError(err)
	s.NotNil(res.Items)
	s.Equal(0, res.TotalPages)
}

func (s *IncidentSuite) TestStatusTransitions() {
	item := s.create("g1", "st1", model.IncidentCategoryMaintenance)
	ctx := context.Background()

	updated, err := s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusInProgress})
	s.Require().NoError(err)
	s.Equal("h1", updated.HandledBy)

	_, err = s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusOpen})
	s.ErrorIs(err, incident.ErrInvalidStatus)

	_, err = s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusResolved})
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusInProgress})
	s.ErrorIs(err, incident.ErrAlreadyResolved)

	_, err = s.svc.UpdateStatus(ctx, "h1", "missing", model.UpdateIncidentDTO{Status: model.IncidentStatusResolved})
	s.ErrorIs(err, incident.ErrIncidentNotFound)

	s.Equal([]string{
		"st1:" + ws.EventIncidentCreated,
		"st1:" + ws.EventIncidentUpdated,
		"st1:" + ws.EventIncidentUpdated,
	}, s.events.events)
}

func (s *IncidentSuite) TestResolvedStaysFinalUnderConcurrentUpdate() {
	ctx := context.Background()
	item := s.create("g1", "st1", model.IncidentCategoryOther)
	_, err := s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusInProgress})
	s.Require().NoError(err)

	// Another host resolves it after this one read InProgress.
	other := "h2"
	s.store.concurrentWrite = func(in *model.Incident) {
		in.Status = model.IncidentStatusResolved
		in.HandledBy = &other
	}
	_, err = s.svc.UpdateStatus(ctx, "h1", item.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusResolved})
	s.ErrorIs(err, incident.ErrAlreadyResolved)

	stored, err := s.store.GetIncidentByID(ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(model.IncidentStatusResolved, stored.Status)
	s.Equal("h2", *stored.HandledBy)
}

func (s *IncidentSuite) TestStaleTransitionRecheckedAgainstFreshStatus() {
	ctx := context.Background()

	a := s.create("g1", "st1", model.IncidentCategoryOther)
	s.store.concurrentWrite = func(in *model.Incident) { in.Status = model.IncidentStatusInProgress }
	_, err := s.svc.UpdateStatus(ctx, "h1", a.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusInProgress})
	s.ErrorIs(err, incident.ErrInvalidStatus)

	b := s.create("g1", "st1", model.IncidentCategoryOther)
	s.store.concurrentWrite = func(in *model.Incident) { in.Status = model.IncidentStatusInProgress }
	updated, err := s.svc.UpdateStatus(ctx, "h1", b.ID, model.UpdateIncidentDTO{Status: model.IncidentStatusResolved})
	s.Require().NoError(err)
	s.Equal(model.IncidentStatusResolved, updated.Status)
}
