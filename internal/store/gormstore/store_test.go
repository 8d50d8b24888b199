package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func TestOTPGetForUpdateLocksRow(t *testing.T) {
	s, mock := newMockStore(t)
	exp := time.Date(2026, 1, 1, 10, 3, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "email_otps" WHERE email = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"email", "code", "expires_at"}).
			AddRow("ana@example.com", "004211", exp))

	code, err := s.OTPs().GetForUpdate(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "004211", code.Code)
	assert.True(t, code.ExpiresAt.Equal(exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPGetForUpdateNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "email_otps"`).
		WillReturnRows(sqlmock.NewRows([]string{"email", "code", "expires_at"}))

	_, err := s.OTPs().GetForUpdate(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPDeleteMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "email_otps" WHERE email = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.OTPs().Delete(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockByPublicIDUsesForUpdate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE public_id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "status"}).
			AddRow(7, "abc123", "NEW"))

	r, err := s.Reports().LockByPublicID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint(7), r.ID)
	assert.Equal(t, models.StatusNew, r.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxMediaOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(sort_order\), 0\) FROM "report_media" WHERE report_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))

	n, err := s.Reports().MaxMediaOrder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiltersByStatusNewestFirst(t *testing.T) {
	s, mock := newMockStore(t)
	status := models.StatusDone

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE status = .* ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	reports, err := s.Reports().List(context.Background(), store.ReportFilter{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, reports)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithBoundsOrdersByID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE latitude BETWEEN .* AND longitude BETWEEN .* ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Reports().List(context.Background(), store.ReportFilter{
		Bounds: &store.Bounds{MinLat: -1, MaxLat: 1, MinLng: -1, MaxLng: 1},
		ByID:   true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsMissingReport(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reports" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.Reports().UpdateFields(context.Background(), &models.Report{ID: 99, Status: models.StatusDone})
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascadesChildren(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "report_comment_media" WHERE comment_id IN \(SELECT "id" FROM "report_comments" WHERE report_id = `).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "report_comments" WHERE report_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "report_media" WHERE report_id = `).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "reports" WHERE "reports"."id" = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Reports().Delete(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Store) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsListNewestFirst(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "news" ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	items, err := s.News().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsDeleteRemovesMediaFirst(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "news_media" WHERE news_id = `).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "news" WHERE "news"."id" = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.News().Delete(context.Background(), 4)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorTouchNewDevice(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "visitors" .* ON CONFLICT \("device_token"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	isNew, err := s.Visitors().Touch(context.Background(), "device-1", at)
	require.NoError(t, err)
	assert.True(t, isNew)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorTouchKnownDeviceBumpsLastSeen(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "visitors" .* ON CONFLICT \("device_token"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "visitors" SET "last_seen_at"=.* WHERE device_token = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	isNew, err := s.Visitors().Touch(context.Background(), "device-1", at)
	require.NoError(t, err)
	assert.False(t, isNew)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorCount(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := s.Visitors().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
