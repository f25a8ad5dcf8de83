package stats

import (
	"context"
	"testing"

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

func countRow(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

func TestSummarizeCounts(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb, &config.AppConfig{Timezone: "UTC"})

	mock.ExpectQuery("SELECT count(.+) FROM `attendance_users`").
		WillReturnRows(countRow(12))
	mock.ExpectQuery("SELECT count(.+) FROM `attendance_checkins`").
		WillReturnRows(countRow(40))
	mock.ExpectQuery("SELECT count(.+) FROM `attendance_checkins`").
		WillReturnRows(countRow(7))

	out, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.TotalUsers)
	assert.Equal(t, int64(40), out.TotalCheckins)
	assert.Equal(t, int64(7), out.CheckinsToday)
	assert.NoError(t, mock.ExpectationsWereMet())
}
