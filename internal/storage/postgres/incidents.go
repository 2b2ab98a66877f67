package postgres

import (
	"context"
	"time"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/incident"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"
)

var incidentColumns = []string{"id", "stay_id", "guest_id", "category", "description", "status", "handled_by", "created_at", "updated_at"}

func (s *Storage) CreateIncident(ctx context.Context, in *model.Incident) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("incident").
		Cols(incidentColumns...).
		Values(in.ID, in.StayID, in.GuestID, in.Category, in.Description, in.Status, in.HandledBy, in.CreatedAt, in.UpdatedAt)

	return s.exec(ctx, ib, "insert incident")
}

func (s *Storage) GetIncidentByID(ctx context.Context, id string) (*model.Incident, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(incidentColumns...).
		From("incident").
		Where(sb.Equal("id", id))

	var in model.Incident
	if err := s.getOne(ctx, &in, sb, "get incident by id"); err != nil {
		return nil, err
	}
	return &in, nil
}

func applyIncidentFilter(sb *sqlbuilder.SelectBuilder, f incident.Filter) {
	if f.Status != "" {
		sb.Where(sb.Equal("status", f.Status))
	}
	if f.Category != "" {
		sb.Where(sb.Equal("category", f.Category))
	}
	if f.StayID != "" {
		sb.Where(sb.Equal("stay_id", f.StayID))
	}
	if f.GuestID != "" {
		sb.Where(sb.Equal("guest_id", f.GuestID))
	}
}

func (s *Storage) ListIncidents(ctx context.Context, f incident.Filter, limit, offset int) ([]model.Incident, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(incidentColumns...).From("incident")
	applyIncidentFilter(sb, f)
	sb.OrderBy("created_at DESC").Limit(limit).Offset(offset)

	q, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)

	out := []model.Incident{}
	if err := s.db.GetConn().SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "list incidents")
	}
	return out, nil
}

func (s *Storage) CountIncidents(ctx context.Context, f incident.Filter) (int64, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("COUNT(1)").From("incident")
	applyIncidentFilter(sb, f)

	q, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	var total int64
	if err := s.db.GetConn().QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "count incidents")
	}
	return total, nil
}

func incidentStatusUpdate(id, from, to, handledBy string, updatedAt time.Time) *sqlbuilder.UpdateBuilder {
	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update("incident").
		Set(
			ub.Assign("status", to),
			ub.Assign("handled_by", handledBy),
			ub.Assign("updated_at", updatedAt),
		).
		Where(
			ub.Equal("id", id),
			ub.Equal("status", from),
		)
	return ub
}

// UpdateIncidentStatus only applies when the stored status is still from.
// No matching row yields storage.ErrConflict; the caller re-reads to tell a
// moved status from a missing incident.
func (s *Storage) UpdateIncidentStatus(ctx context.Context, id, from, to, handledBy string, updatedAt time.Time) error {
	q, args := incidentStatusUpdate(id, from, to, handledBy, updatedAt).BuildWithFlavor(sqlbuilder.PostgreSQL)
	res, err := s.db.GetConn().ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "update incident status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return storage.ErrConflict
	}
	return nil
}
