package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rollcall/core/internal/config"
	"github.com/rollcall/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// snapshot is the exported ledger shape. Everything needed to rebuild an
// attendance report lives here; passwords never leave the database.
type snapshot struct {
	TakenAt  time.Time              `json:"taken_at"`
	Users    []exportUser           `json:"users"`
	Sessions []models.SessionModel  `json:"sessions"`
	Checkins []models.CheckinModel  `json:"checkins"`
	Renames  []models.NameChangeLog `json:"name_changes"`
}

type exportUser struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	store  *s3Store
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) (*Service, error) {
	svc := &Service{db: db, cfg: cfg, logger: logger}
	if cfg.Backup.Enable {
		store, err := newS3Store(cfg.Backup)
		if err != nil {
			return nil, err
		}
		svc.store = store
	}
	return svc, nil
}

func (s *Service) Enabled() bool {
	return s.store != nil
}

// Run exports the full ledger and uploads it as one gzipped JSON object.
func (s *Service) Run(ctx context.Context) error {
	if s.store == nil {
		return errors.New("backup is not enabled")
	}

	snap, err := s.collect(ctx)
	if err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}

	body, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.objectKey(snap.TakenAt)
	if err := s.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.Info("ledger backup uploaded",
		zap.String("key", key),
		zap.Int("users", len(snap.Users)),
		zap.Int("checkins", len(snap.Checkins)),
		zap.Int("bytes", len(body)))
	return nil
}

func (s *Service) collect(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{TakenAt: time.Now()}
	db := s.db.WithContext(ctx)

	var users []models.UserModel
	if err := db.Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	snap.Users = make([]exportUser, len(users))
	for i, u := range users {
		snap.Users[i] = exportUser{
			UserID:    u.UserID,
			FullName:  u.FullName,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}
	}

	if err := db.Order("created_at").Find(&snap.Sessions).Error; err != nil {
		return nil, err
	}
	if err := db.Order("checked_in_at").Find(&snap.Checkins).Error; err != nil {
		return nil, err
	}
	if err := db.Order("created_at").Find(&snap.Renames).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) objectKey(takenAt time.Time) string {
	prefix := strings.Trim(s.cfg.Backup.Prefix, "/")
	name := fmt.Sprintf("rollcall-backup-%s.json.gz", takenAt.UTC().Format("20060102-150405"))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func encodeSnapshot(snap *snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
