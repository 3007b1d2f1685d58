package draftstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSlot(t *testing.T) (*PostgresSlot, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSlot(db), mock
}

func TestPostgresSlot_Get(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WithArgs("user-1", "project-creation").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"schemaVersion":1}`))

	got, err := slot.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, `{"schemaVersion":1}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSlot_GetMissing(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WithArgs("user-1", "project-creation").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WithArgs("user-1", "project-creation").
		WillReturnError(&pq.Error{Code: "42P01"})

	_, err := slot.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = slot.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSlot_GetPropagatesDriverErrors(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload::text")).
		WillReturnError(sql.ErrConnDone)

	_, err := slot.Get(context.Background(), testKey)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestPostgresSlot_SetUpserts(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wizard_drafts")).
		WithArgs("user-1", "project-creation", `{"a":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, slot.Set(context.Background(), testKey, []byte(`{"a":1}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSlot_SetCreatesMissingTable(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wizard_drafts")).
		WillReturnError(&pq.Error{Code: "42P01"})
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS wizard_drafts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wizard_drafts")).
		WithArgs("user-1", "project-creation", `{"a":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, slot.Set(context.Background(), testKey, []byte(`{"a":1}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSlot_Delete(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM wizard_drafts")).
		WithArgs("user-1", "project-creation").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, slot.Delete(context.Background(), testKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSlot_Purge(t *testing.T) {
	slot, mock := newMockSlot(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE updated_at < $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := slot.Purge(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
