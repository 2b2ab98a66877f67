package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Heidric/guest-self-service/internal/logger"
	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/Heidric/guest-self-service/pkg/pgx"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

const uniqueViolation = "23505"

type Storage struct {
	db *pgx.Postgres
}

func NewStorage(ctx context.Context, db *pgx.Postgres) *Storage {
	log = logger.Log.With().Str("name", "storage").Logger()

	return &Storage{db: db}
}

// getOne runs a single-row select and maps sql.ErrNoRows to storage.ErrEntityNotFound.
func (s *Storage) getOne(ctx context.Context, dest any, sb *sqlbuilder.SelectBuilder, what string) error {
	query, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	if err := s.db.GetConn().GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrEntityNotFound
		}
		return errors.Wrap(err, what)
	}
	return nil
}

func (s *Storage) exec(ctx context.Context, b sqlbuilder.Builder, what string) error {
	query, args := b.BuildWithFlavor(sqlbuilder.PostgreSQL)
	if _, err := s.db.GetConn().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return errors.Wrap(err, what)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Storage) GetGuestByReservationCode(ctx context.Context, code string) (*model.Guest, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "COALESCE(stay_id, '') AS stay_id", "email", "first_name", "last_name", "role", "reservation_code", "access_code_hash").
		From("guest").
		Where(sb.Equal("reservation_code", code))

	var g model.Guest
	if err := s.getOne(ctx, &g, sb, "get guest by reservation code"); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Storage) GetGuestByID(ctx context.Context, id string) (*model.Guest, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "COALESCE(stay_id, '') AS stay_id", "email", "first_name", "last_name", "role", "reservation_code").
		From("guest").
		Where(sb.Equal("id", id))

	var g model.Guest
	if err := s.getOne(ctx, &g, sb, "get guest by id"); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Storage) CreateGuest(ctx context.Context, g *model.Guest) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("guest").
		Cols("id", "stay_id", "email", "first_name", "last_name", "role", "reservation_code", "access_code_hash").
		Values(g.ID, g.StayID, g.Email, g.FirstName, g.LastName, g.Role, g.ReservationCode, g.AccessCodeHash)

	return s.exec(ctx, ib, "create guest")
}

func (s *Storage) GetStayByID(ctx context.Context, id string) (*model.Stay, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "property_name", "address", "wifi_name", "wifi_password", "host_phone", "check_in", "check_out").
		From("stay").
		Where(sb.Equal("id", id))

	var st model.Stay
	if err := s.getOne(ctx, &st, sb, "get stay by id"); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("session").
		Cols("id", "guest_id", "access_token", "refresh_token", "expires_at").
		Values(session.ID, session.GuestID, session.AccessToken, session.RefreshToken, session.ExpiresAt)

	return s.exec(ctx, ib, "create session")
}

func (s *Storage) GetSessionBySID(ctx context.Context, sID string) (*model.Session, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "guest_id", "access_token", "refresh_token", "expires_at").
		From("session").
		Where(sb.Equal("id", sID))

	var session model.Session
	if err := s.getOne(ctx, &session, sb, "get session by sID"); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) GetSessionByRToken(ctx context.Context, rToken string) (*model.Session, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "guest_id", "access_token", "refresh_token", "expires_at").
		From("session").
		Where(sb.Equal("refresh_token", rToken))

	var session model.Session
	if err := s.getOne(ctx, &session, sb, "get session by refresh token"); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSessionByID(ctx context.Context, sID string) error {
	db := sqlbuilder.NewDeleteBuilder()
	db.DeleteFrom("session").Where(db.Equal("id", sID))

	return s.exec(ctx, db, "delete session")
}

// DeleteExpiredSessions is run periodically from main.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	db := sqlbuilder.NewDeleteBuilder()
	db.DeleteFrom("session").Where(db.LessThan("expires_at", now))

	query, args := db.BuildWithFlavor(sqlbuilder.PostgreSQL)
	res, err := s.db.GetConn().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "delete expired sessions")
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Info().Int64("count", n).Msg("expired sessions removed")
	}
	return n, nil
}
