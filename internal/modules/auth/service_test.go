package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rollcall/core/internal/models"
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

func TestRegisterFirstAccountBecomesAdmin(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE attendance_users SET role").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "First One In",
		Email:    "Founder@Example.com",
		Password: "hunter22hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, out.Role)
	assert.NotEmpty(t, out.Token)
	assert.NotEmpty(t, out.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterLaterAccountsStayAttendee(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb)

	// The conditional promote touches no row once the table holds more
	// than this insert, so a concurrent second registration can never
	// also become admin.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE attendance_users SET role").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	out, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Second One In",
		Email:    "member@example.com",
		Password: "hunter22hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAttendee, out.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewService(gdb)

	// No prior read: the unique index on email is the whole check, so
	// two concurrent registrations cannot both slip past a count.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_users`").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'taken@example.com' for key 'idx_attendance_users_email'"))
	mock.ExpectRollback()

	out, err := svc.Register(context.Background(), &RegisterRequest{
		FullName: "Latecomer",
		Email:    "taken@example.com",
		Password: "hunter22hunter22",
	})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
