package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rollcall/core/internal/config"
	"github.com/rollcall/core/internal/modules/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return gdb, mock
}

func newRecorder(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := newMockDB(t)
	cfg := &config.AppConfig{
		Timezone: "UTC",
		Session: config.SessionConfig{
			TTLSeconds:            config.DefaultSessionTTLSeconds,
			RotateIntervalSeconds: config.DefaultRotateIntervalSeconds,
		},
	}
	return NewService(gdb, cfg, session.NewService(gdb, cfg)), mock
}

func sessionRows(token string, expiresAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "token", "created_by", "expires_at"}).
		AddRow("sess-1", now, now, token, "admin-1", expiresAt)
}

func checkinRows(id, userID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "user_id", "day", "session_id", "checked_in_at"}).
		AddRow(id, now, now, userID, DayKey(now, time.UTC), "sess-1", now)
}

func TestRecordFreshCheckin(t *testing.T) {
	svc, mock := newRecorder(t)

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sessionRows("tok-live", time.Now().Add(time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_checkins`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Record(context.Background(), "user-1", "tok-live")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.AlreadyCheckedIn)
	assert.Equal(t, "user-1", res.Checkin.UserID)
	assert.Equal(t, "sess-1", res.Checkin.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSameDayRepeat(t *testing.T) {
	svc, mock := newRecorder(t)

	// The unique index suppresses the insert; the existing row is
	// fetched and reported as a success, never an error.
	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sessionRows("tok-live", time.Now().Add(time.Minute)))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_checkins`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT (.+) FROM `attendance_checkins`").
		WillReturnRows(checkinRows("chk-earlier", "user-1"))

	res, err := svc.Record(context.Background(), "user-1", "tok-live")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyCheckedIn)
	assert.Equal(t, "chk-earlier", res.Checkin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRejectsExpiredToken(t *testing.T) {
	svc, mock := newRecorder(t)

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sessionRows("tok-stale", time.Now().Add(-time.Minute)))

	res, err := svc.Record(context.Background(), "user-1", "tok-stale")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, session.ErrTokenExpired)
	assert.True(t, IsValidationError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRejectsUnknownToken(t *testing.T) {
	svc, mock := newRecorder(t)

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := svc.Record(context.Background(), "user-1", "tok-bogus")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, session.ErrTokenNotFound)
	assert.True(t, IsValidationError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(session.ErrTokenNotFound))
	assert.True(t, IsValidationError(session.ErrTokenExpired))
	assert.False(t, IsValidationError(errors.New("connection reset")))
	assert.False(t, IsValidationError(nil))
}
