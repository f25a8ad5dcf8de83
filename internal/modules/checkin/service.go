package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rollcall/core/internal/config"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/modules/session"
	"github.com/rollcall/core/internal/pkg/pagination"
	"github.com/rollcall/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service records attendance events against validated sessions.
type Service struct {
	db       *gorm.DB
	cfg      *config.AppConfig
	sessions *session.Service
}

func NewService(db *gorm.DB, cfg *config.AppConfig, sessions *session.Service) *Service {
	return &Service{db: db, cfg: cfg, sessions: sessions}
}

// Record validates the presented token and records at most one check-in
// for the user on the current calendar day. The write is a single
// conditional insert: the (user_id, day) unique index absorbs concurrent
// duplicates, and a suppressed insert is reported as AlreadyCheckedIn
// rather than an error.
func (s *Service) Record(ctx context.Context, userID, token string) (*RecordResult, error) {
	sess, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row := &models.CheckinModel{
		UserID:      userID,
		Day:         DayKey(now, s.cfg.Location()),
		SessionID:   sess.ID,
		CheckedInAt: now,
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected > 0 {
		return &RecordResult{Success: true, Checkin: toDTO(row)}, nil
	}

	// Conflict path: someone (possibly a concurrent request from the same
	// device) already holds today's slot. Surface that row.
	var existing models.CheckinModel
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, row.Day).
		First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("fetch existing check-in: %w", err)
	}
	return &RecordResult{Success: true, Checkin: toDTO(&existing), AlreadyCheckedIn: true}, nil
}

// ListOwn returns the user's own check-in history, newest first.
func (s *Service) ListOwn(ctx context.Context, userID string, q pagination.Query) ([]CheckinDTO, response.Pagination, error) {
	query := s.db.WithContext(ctx).
		Model(&models.CheckinModel{}).
		Where("user_id = ?", userID).
		Order("checked_in_at DESC")

	var rows []models.CheckinModel
	pag, err := pagination.Paginate(query, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	out := make([]CheckinDTO, len(rows))
	for i := range rows {
		out[i] = toDTO(&rows[i])
	}
	return out, pag, nil
}

// ListAll returns every check-in joined with the attendee profile, newest
// first. Admin only; the handler enforces the role gate.
func (s *Service) ListAll(ctx context.Context, q pagination.Query) ([]AdminCheckinDTO, response.Pagination, error) {
	query := s.db.WithContext(ctx).
		Model(&models.CheckinModel{}).
		Select("attendance_checkins.id, attendance_checkins.user_id, attendance_checkins.session_id, attendance_checkins.checked_in_at, attendance_users.full_name, attendance_users.email").
		Joins("LEFT JOIN attendance_users ON attendance_users.user_id = attendance_checkins.user_id").
		Order("attendance_checkins.checked_in_at DESC")

	var rows []AdminCheckinDTO
	pag, err := pagination.Paginate(query, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return rows, pag, nil
}

// HasCheckedInToday reports whether the user already holds today's slot.
func (s *Service) HasCheckedInToday(ctx context.Context, userID string) (bool, error) {
	day := DayKey(time.Now(), s.cfg.Location())
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.CheckinModel{}).
		Where("user_id = ? AND day = ?", userID, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsValidationError reports whether err is a token rejection rather than
// a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, session.ErrTokenNotFound) || errors.Is(err, session.ErrTokenExpired)
}

func toDTO(m *models.CheckinModel) CheckinDTO {
	return CheckinDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		SessionID:   m.SessionID,
		CheckedInAt: m.CheckedInAt,
	}
}
