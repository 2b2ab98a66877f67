package postgres

import (
	"context"
	"database/sql"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/storage"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

func (s *Storage) GetDocument(ctx context.Context, guestID string) (*model.Document, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("guest_id", "document_type", "document_number", "nationality", "first_name", "last_name", "birth_date", "registered_at").
		From("guest_document").
		Where(sb.Equal("guest_id", guestID))

	var doc model.Document
	if err := s.getOne(ctx, &doc, sb, "get document"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// lockGuest serializes document writes and contract signing for one guest.
// It locks the guest row because the document row may not exist yet.
func lockGuest(guestID string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id").
		From("guest").
		Where(sb.Equal("id", guestID)).
		ForUpdate()
	return sb
}

func contractCount(guestID string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("COUNT(1)").
		From("contract").
		Where(sb.Equal("guest_id", guestID))
	return sb
}

func documentUpsert(doc *model.Document) *sqlbuilder.InsertBuilder {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("guest_document").
		Cols("guest_id", "document_type", "document_number", "nationality", "first_name", "last_name", "birth_date", "registered_at").
		Values(doc.GuestID, doc.Type, doc.Number, doc.Nationality, doc.FirstName, doc.LastName, doc.BirthDate, doc.RegisteredAt).
		SQL(`ON CONFLICT (guest_id) DO UPDATE SET
			document_type = EXCLUDED.document_type,
			document_number = EXCLUDED.document_number,
			nationality = EXCLUDED.nationality,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			birth_date = EXCLUDED.birth_date,
			registered_at = EXCLUDED.registered_at`)
	return ib
}

// UpsertDocument stores the guest document unless a contract already
// snapshots it, in which case storage.ErrConflict is returned.
func (s *Storage) UpsertDocument(ctx context.Context, doc *model.Document) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockGuestTx(ctx, tx, doc.GuestID); err != nil {
			return err
		}

		q, args := contractCount(doc.GuestID).BuildWithFlavor(sqlbuilder.PostgreSQL)
		var signed int
		if err := tx.GetContext(ctx, &signed, q, args...); err != nil {
			return errors.Wrap(err, "count contracts")
		}
		if signed > 0 {
			return storage.ErrConflict
		}

		q, args = documentUpsert(doc).BuildWithFlavor(sqlbuilder.PostgreSQL)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return errors.Wrap(err, "upsert document")
		}
		return nil
	})
}

func lockGuestTx(ctx context.Context, tx *sqlx.Tx, guestID string) error {
	q, args := lockGuest(guestID).BuildWithFlavor(sqlbuilder.PostgreSQL)
	var id string
	if err := tx.GetContext(ctx, &id, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrEntityNotFound
		}
		return errors.Wrap(err, "lock guest")
	}
	return nil
}

func (s *Storage) GetPreferences(ctx context.Context, guestID string) (*model.Preferences, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("guest_id", "arrival_time", "language", "phone", "extra_beds", "notes", "updated_at").
		From("guest_preferences").
		Where(sb.Equal("guest_id", guestID))

	var p model.Preferences
	if err := s.getOne(ctx, &p, sb, "get preferences"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) UpsertPreferences(ctx context.Context, p *model.Preferences) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("guest_preferences").
		Cols("guest_id", "arrival_time", "language", "phone", "extra_beds", "notes", "updated_at").
		Values(p.GuestID, p.ArrivalTime, p.Language, p.Phone, p.ExtraBeds, p.Notes, p.UpdatedAt).
		SQL(`ON CONFLICT (guest_id) DO UPDATE SET
			arrival_time = EXCLUDED.arrival_time,
			language = EXCLUDED.language,
			phone = EXCLUDED.phone,
			extra_beds = EXCLUDED.extra_beds,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`)

	return s.exec(ctx, ib, "upsert preferences")
}

func (s *Storage) GetContractByGuest(ctx context.Context, guestID string) (*model.Contract, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "stay_id", "guest_id", "signer_name", "document_type", "document_number", "signed_at").
		From("contract").
		Where(sb.Equal("guest_id", guestID)).
		Limit(1)

	var c model.Contract
	if err := s.getOne(ctx, &c, sb, "get contract"); err != nil {
		return nil, err
	}
	return &c, nil
}

func documentSnapshot(guestID string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("document_type", "document_number").
		From("guest_document").
		Where(sb.Equal("guest_id", guestID))
	return sb
}

// CreateContract takes the same guest lock as UpsertDocument, so the contract
// always snapshots the document that is stored. A second signature is
// rejected by the unique guest_id constraint.
func (s *Storage) CreateContract(ctx context.Context, c *model.Contract) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockGuestTx(ctx, tx, c.GuestID); err != nil {
			return err
		}

		q, args := documentSnapshot(c.GuestID).BuildWithFlavor(sqlbuilder.PostgreSQL)
		var stored struct {
			Type   string `db:"document_type"`
			Number string `db:"document_number"`
		}
		if err := tx.GetContext(ctx, &stored, q, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrEntityNotFound
			}
			return errors.Wrap(err, "read document")
		}
		if stored.Type != c.DocumentType || stored.Number != c.DocumentNumber {
			return storage.ErrConflict
		}

		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("contract").
			Cols("id", "stay_id", "guest_id", "signer_name", "document_type", "document_number", "signed_at").
			Values(c.ID, c.StayID, c.GuestID, c.SignerName, c.DocumentType, c.DocumentNumber, c.SignedAt)

		q, args = ib.BuildWithFlavor(sqlbuilder.PostgreSQL)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return errors.Wrap(err, "create contract")
		}
		return nil
	})
}

func (s *Storage) InsertUnlockEvent(ctx context.Context, ev *model.UnlockEvent) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("door_unlock_event").
		Cols("id", "stay_id", "guest_id", "method", "created_at").
		Values(ev.ID, ev.StayID, ev.GuestID, ev.Method, ev.CreatedAt)

	return s.exec(ctx, ib, "insert unlock event")
}

func (s *Storage) UpsertDoorCode(ctx context.Context, code *model.DoorCode) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("door_code").
		Cols("stay_id", "guest_id", "code_hash", "expires_at").
		Values(code.StayID, code.GuestID, code.CodeHash, code.ExpiresAt).
		SQL(`ON CONFLICT (guest_id) DO UPDATE SET
			stay_id = EXCLUDED.stay_id,
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at`)

	return s.exec(ctx, ib, "upsert door code")
}
