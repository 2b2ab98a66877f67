package postgres

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Heidric/guest-self-service/internal/model"
	"github.com/Heidric/guest-self-service/internal/services/incident"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.True(t, isUniqueViolation(errors.Wrap(&pgconn.PgError{Code: uniqueViolation}, "insert")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestApplyIncidentFilter(t *testing.T) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id").From("incident")
	applyIncidentFilter(sb, incident.Filter{Status: "Open", GuestID: "g1"})

	q, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.Contains(t, q, "status = $1")
	assert.Contains(t, q, "guest_id = $2")
	assert.NotContains(t, q, "category")
	assert.Equal(t, []interface{}{"Open", "g1"}, args)
}

func TestApplyIncidentFilterEmpty(t *testing.T) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id").From("incident")
	applyIncidentFilter(sb, incident.Filter{})

	q, args := sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.NotContains(t, q, "WHERE")
	assert.Empty(t, args)
}

func TestDocumentWritesTakeGuestLock(t *testing.T) {
	q, args := lockGuest("g1").BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.Equal(t, "SELECT id FROM guest WHERE id = $1 FOR UPDATE", q)
	assert.Equal(t, []interface{}{"g1"}, args)

	q, args = contractCount("g1").BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.Equal(t, "SELECT COUNT(1) FROM contract WHERE guest_id = $1", q)
	assert.Equal(t, []interface{}{"g1"}, args)

	q, _ = documentUpsert(&model.Document{GuestID: "g1", Type: "DNI", Number: "12345678Z"}).BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.Contains(t, q, "INSERT INTO guest_document")
	assert.Contains(t, q, "ON CONFLICT (guest_id) DO UPDATE")
}

func TestDocumentSnapshotSelectsTypeAndNumber(t *testing.T) {
	q, args := documentSnapshot("g1").BuildWithFlavor(sqlbuilder.PostgreSQL)
	assert.Equal(t, "SELECT document_type, document_number FROM guest_document WHERE guest_id = $1", q)
	assert.Equal(t, []interface{}{"g1"}, args)
}

func TestIncidentStatusUpdateComparesOldStatus(t *testing.T) {
	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	q, args := incidentStatusUpdate("i1", model.IncidentStatusInProgress, model.IncidentStatusResolved, "h1", at).
		BuildWithFlavor(sqlbuilder.PostgreSQL)

	assert.Contains(t, q, "UPDATE incident SET")
	assert.Contains(t, q, "WHERE id = $4 AND status = $5")
	assert.Equal(t, []interface{}{model.IncidentStatusResolved, "h1", at, "i1", model.IncidentStatusInProgress}, args)
}

func TestSchemaRolesMatchModel(t *testing.T) {
	b, err := os.ReadFile("../../../migrations/0001_init.sql")
	require.NoError(t, err)
	schema := string(b)

	assert.Contains(t, schema, "DEFAULT '"+model.RoleGuest+"'")
	assert.Contains(t, schema, "CHECK (role IN ('"+model.RoleGuest+"', '"+model.RoleHost+"'))")
	assert.False(t, strings.Contains(schema, "'guest'") || strings.Contains(schema, "'host'"))
}
