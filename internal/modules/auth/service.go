package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rollcall/core/internal/database"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 7 * 24 * time.Hour

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates an account with a hashed password and signs a token for
// it. The very first account becomes the admin; everyone after is an
// attendee until promoted. Email uniqueness rides on the column's unique
// index rather than a prior read, so two concurrent registrations with the
// same address cannot both get through.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created := models.UserModel{
		UserID:   uuid.New().String(),
		FullName: strings.TrimSpace(req.FullName),
		Email:    &email,
		Role:     models.RoleAttendee,
		Password: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&created).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return ErrEmailTaken
			}
			return err
		}

		// Promote to admin iff this insert produced the table's only
		// row. The count runs inside the UPDATE itself, so concurrent
		// first registrations serialize on the row locks and at most
		// one promotion wins.
		res := tx.Exec(
			"UPDATE attendance_users SET role = ? WHERE user_id = ? AND 1 = (SELECT n FROM (SELECT COUNT(*) AS n FROM attendance_users) AS bootstrap)",
			models.RoleAdmin, created.UserID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created.Role = models.RoleAdmin
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueToken(&created)
}

// Login verifies the password and signs a token. Failed attempts stall for
// three seconds before answering, mirroring the cost of an online guess.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u models.UserModel
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.failSlow(ctx)
	}
	if err != nil {
		return nil, err
	}

	if u.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, s.failSlow(ctx)
	}

	return s.issueToken(&u)
}

func (s *Service) failSlow(ctx context.Context) error {
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
	}
	return ErrBadCredentials
}

func (s *Service) issueToken(u *models.UserModel) (*TokenResponse, error) {
	token, err := jwt.Sign(u.UserID, tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:    token,
		UserID:   u.UserID,
		Role:     u.Role,
		FullName: u.FullName,
	}, nil
}
