package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rollcall/core/internal/config"
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

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Session: config.SessionConfig{
			TTLSeconds:            config.DefaultSessionTTLSeconds,
			RotateIntervalSeconds: config.DefaultRotateIntervalSeconds,
		},
	}
}

func sessionRows(token string, expiresAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "token", "created_by", "expires_at"}).
		AddRow("sess-1", now, now, token, "admin-1", expiresAt)
}

func TestIssuePersistsTokenWithTTL(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_sessions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	before := time.Now()
	sess, err := svc.Issue(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Len(t, sess.Token, 32)
	assert.Equal(t, "admin-1", sess.CreatedBy)
	assert.WithinDuration(t,
		before.Add(time.Duration(config.DefaultSessionTTLSeconds)*time.Second),
		sess.ExpiresAt, 2*time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRetriesOnTokenCollision(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_sessions`").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'x' for key 'token'"))
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_sessions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sess, err := svc.Issue(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Len(t, sess.Token, 32)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueStorageErrorIsNotRetried(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_sessions`").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := svc.Issue(context.Background(), "admin-1")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateEmptyToken(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	sess, err := svc.Validate(context.Background(), "   ")
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateUnknownToken(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sess, err := svc.Validate(context.Background(), "no-such-token")
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{"well inside the window", time.Minute, nil},
		{"lapsed a minute ago", -time.Minute, ErrTokenExpired},
		{"at the expiry instant", 0, ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			svc := NewService(gdb, testConfig())

			mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
				WillReturnRows(sessionRows("tok-abc", time.Now().Add(tt.offset)))

			sess, err := svc.Validate(context.Background(), "tok-abc")
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			// The session row comes back even when lapsed, so callers
			// can tell an expired token from an unknown one.
			require.NotNil(t, sess)
			assert.Equal(t, "tok-abc", sess.Token)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCurrentNoneActive(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sess, err := svc.Current(context.Background())
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentReturnsLiveSession(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `attendance_sessions`").
		WillReturnRows(sessionRows("tok-live", time.Now().Add(time.Minute)))

	sess, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-live", sess.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}
