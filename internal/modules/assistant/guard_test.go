package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardStatement(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr error
	}{
		{
			"select on attendance table",
			"SELECT * FROM attendance_checkins WHERE day = '2026-03-14'",
			nil,
		},
		{
			"join across attendance tables",
			"SELECT u.full_name FROM attendance_checkins c JOIN attendance_users u ON u.user_id = c.user_id",
			nil,
		},
		{
			"update attendance table",
			"UPDATE attendance_users SET role = 'admin' WHERE user_id = 'x'",
			nil,
		},
		{
			"insert into attendance table",
			"INSERT INTO attendance_users (user_id, full_name) VALUES ('x', 'y')",
			nil,
		},
		{
			"select from foreign table",
			"SELECT * FROM mysql.user",
			ErrTableNotAllowed,
		},
		{
			"join leaks into foreign table",
			"SELECT * FROM attendance_users u JOIN secrets s ON s.id = u.id",
			ErrTableNotAllowed,
		},
		{
			"update foreign table",
			"UPDATE accounts SET balance = 0",
			ErrTableNotAllowed,
		},
		{
			"drop without confirmation",
			"DROP TABLE attendance_checkins",
			ErrNeedsConfirmation,
		},
		{
			"truncate without confirmation",
			"TRUNCATE attendance_checkins",
			ErrNeedsConfirmation,
		},
		{
			"drop with confirmation marker",
			"DROP TABLE attendance_checkins --CONFIRMED",
			nil,
		},
		{
			"truncate with confirmation marker",
			"TRUNCATE attendance_checkins --CONFIRMED",
			nil,
		},
		{
			"mixed case destructive still caught",
			"dRoP tAbLe attendance_users",
			ErrNeedsConfirmation,
		},
		{
			"confirmed drop on foreign table still blocked",
			"DROP TABLE accounts --CONFIRMED",
			ErrTableNotAllowed,
		},
		{
			"confirmed truncate on foreign table still blocked",
			"TRUNCATE accounts --CONFIRMED",
			ErrTableNotAllowed,
		},
		{
			"empty statement",
			"   ",
			ErrEmptyStatement,
		},
		{
			"subquery opener is not a table name",
			"SELECT * FROM (SELECT user_id FROM attendance_checkins) t",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GuardStatement(tt.sql)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGuardTableName(t *testing.T) {
	assert.NoError(t, GuardTableName("attendance_users"))
	assert.NoError(t, GuardTableName("  Attendance_Checkins  "))
	assert.Error(t, GuardTableName("users"))
	assert.Error(t, GuardTableName("attendance_users; DROP TABLE x"))
	assert.Error(t, GuardTableName(""))
}
