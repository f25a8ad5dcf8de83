package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rollcall/core/internal/config"
	"github.com/rollcall/core/internal/database"
	"github.com/rollcall/core/internal/models"
	"gorm.io/gorm"
)

// Service mints and validates time-windowed check-in credentials.
type Service struct {
	db  *gorm.DB
	cfg *config.AppConfig
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// Issue mints a fresh session credential owned by createdBy. The expiry is
// now plus the configured TTL. Old sessions are left untouched; they lapse
// on their own and stay in the table as check-in parents.
func (s *Service) Issue(ctx context.Context, createdBy string) (*models.SessionModel, error) {
	// Token collisions are practically impossible at 24 random bytes, but
	// the unique index makes them fail loudly, so retry a couple of times.
	for attempt := 0; attempt < 3; attempt++ {
		token, err := MintToken()
		if err != nil {
			return nil, err
		}

		session := &models.SessionModel{
			Token:     token,
			CreatedBy: createdBy,
			ExpiresAt: time.Now().Add(s.cfg.Session.TTL()),
		}
		err = s.db.WithContext(ctx).Create(session).Error
		if err == nil {
			return session, nil
		}
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, errors.New("session token collision persisted after retries")
}

// Current returns the most recently minted session that is still inside
// its validity window.
func (s *Service) Current(ctx context.Context) (*models.SessionModel, error) {
	var session models.SessionModel
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Validate resolves a presented token to its session. A token that matches
// no row yields ErrTokenNotFound; a matched but lapsed session yields
// ErrTokenExpired along with the session, so callers can tell the two
// rejections apart.
func (s *Service) Validate(ctx context.Context, token string) (*models.SessionModel, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenNotFound
	}

	var session models.SessionModel
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if ClassifyExpiry(session.ExpiresAt, time.Now()) {
		return &session, ErrTokenExpired
	}
	return &session, nil
}

// ClassifyExpiry reports whether a session with the given expiry is lapsed
// at instant now. Expiry is exclusive: a session presented exactly at its
// expires_at is already lapsed.
func ClassifyExpiry(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}

func toDTO(m *models.SessionModel) SessionDTO {
	return SessionDTO{
		ID:        m.ID,
		Token:     m.Token,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
