package user

import (
	"context"
	"errors"
	"strings"

	"github.com/rollcall/core/internal/database"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/pagination"
	"github.com/rollcall/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailInUse      = errors.New("email already in use")
)

// AuditContext carries the request metadata recorded with a name change.
type AuditContext struct {
	IPAddress string
	UserAgent string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetProfile returns the stored profile for a principal id.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.UserModel, error) {
	var u models.UserModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertProfile creates or updates the caller's profile. The stored role is
// never touched here: role changes go through the admin listing, and a
// first-time profile gets the attendee default from the column. Every
// display-name change is written to the audit log with the caller's
// address and user agent.
func (s *Service) UpsertProfile(ctx context.Context, userID string, req *UpdateProfileRequest, audit AuditContext) (*models.UserModel, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, errors.New("full name must not be empty")
	}
	var email *string
	if v := strings.TrimSpace(req.Email); v != "" {
		email = &v
	}

	var result *models.UserModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserModel
		err := tx.Where("user_id = ?", userID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := models.UserModel{
				UserID:   userID,
				FullName: fullName,
				Email:    email,
				Role:     models.RoleAttendee,
			}
			if err := tx.Create(&created).Error; err != nil {
				if database.IsDuplicateKey(err) {
					return ErrEmailInUse
				}
				return err
			}
			if err := s.logNameChange(tx, userID, nil, fullName, audit); err != nil {
				return err
			}
			result = &created
			return nil

		case err != nil:
			return err
		}

		updates := map[string]interface{}{
			"full_name": fullName,
			"email":     email,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return ErrEmailInUse
			}
			return err
		}
		if existing.FullName != fullName {
			prev := existing.FullName
			if err := s.logNameChange(tx, userID, &prev, fullName, audit); err != nil {
				return err
			}
		}
		existing.FullName = fullName
		existing.Email = email
		result = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) logNameChange(tx *gorm.DB, userID string, previous *string, newName string, audit AuditContext) error {
	return tx.Create(&models.NameChangeLog{
		UserID:       userID,
		PreviousName: previous,
		NewName:      newName,
		IPAddress:    audit.IPAddress,
		UserAgent:    audit.UserAgent,
	}).Error
}

// List returns all profiles, newest first. Admin only.
func (s *Service) List(ctx context.Context, q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	query := s.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Order("created_at DESC")

	var rows []models.UserModel
	pag, err := pagination.Paginate(query, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return rows, pag, nil
}

// SetRole updates a profile's role. Admin only.
func (s *Service) SetRole(ctx context.Context, userID, role string) error {
	if role != models.RoleAdmin && role != models.RoleAttendee {
		return errors.New("unknown role")
	}
	res := s.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("user_id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// NameChanges returns the audit trail, newest first. Admin only.
func (s *Service) NameChanges(ctx context.Context, q pagination.Query) ([]models.NameChangeLog, response.Pagination, error) {
	query := s.db.WithContext(ctx).
		Model(&models.NameChangeLog{}).
		Order("created_at DESC")

	var rows []models.NameChangeLog
	pag, err := pagination.Paginate(query, q, &rows)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return rows, pag, nil
}
