package stats

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/config"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/modules/checkin"
	"github.com/rollcall/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Summary is the admin dashboard snapshot. CheckinsToday already counts
// distinct members: the one-per-day index caps each at a single row.
type Summary struct {
	TotalUsers    int64 `json:"total_users"`
	TotalCheckins int64 `json:"total_checkins"`
	CheckinsToday int64 `json:"checkins_today"`
}

type Service struct {
	db  *gorm.DB
	cfg *config.AppConfig
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// Summarize computes the dashboard counters. Today is the calendar day in
// the configured timezone.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	var out Summary
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.UserModel{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.CheckinModel{}).Count(&out.TotalCheckins).Error; err != nil {
		return nil, err
	}

	day := checkin.DayKey(time.Now(), s.cfg.Location())
	if err := db.Model(&models.CheckinModel{}).
		Where("day = ?", day).
		Count(&out.CheckinsToday).Error; err != nil {
		return nil, err
	}

	return &out, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/stats", authMW, middleware.RequireRole(models.RoleAdmin))
	g.GET("", h.summary)
}

// GET /stats
func (h *Handler) summary(c *gin.Context) {
	out, err := h.svc.Summarize(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}
