package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/pagination"
	"github.com/rollcall/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users", authMW)

	g.GET("/me", h.me)
	g.POST("/me", h.updateMe)

	a := g.Group("", middleware.RequireRole(models.RoleAdmin))
	a.GET("", h.list)
	a.PATCH("/role/:id", h.setRole)
	a.GET("/name-changes", h.nameChanges)
}

// GET /users/me
func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.NotFoundMsg(c, "profile not set up yet")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toProfileDTO(u))
}

// POST /users/me creates or updates the caller's profile.
func (h *Handler) updateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "full_name is required")
		return
	}

	audit := AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	u, err := h.svc.UpsertProfile(c.Request.Context(), middleware.CurrentUserID(c), &req, audit)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			response.Conflict(c, "email already in use")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toProfileDTO(u))
}

// GET /users is the admin profile listing.
func (h *Handler) list(c *gin.Context) {
	rows, pag, err := h.svc.List(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]ProfileDTO, len(rows))
	for i := range rows {
		out[i] = toProfileDTO(&rows[i])
	}
	response.Paged(c, out, pag)
}

// PATCH /users/role/:id
func (h *Handler) setRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role is required")
		return
	}
	if err := h.svc.SetRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.NotFound(c)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// GET /users/name-changes returns the audit trail.
func (h *Handler) nameChanges(c *gin.Context) {
	rows, pag, err := h.svc.NameChanges(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]NameChangeDTO, len(rows))
	for i, r := range rows {
		out[i] = NameChangeDTO{
			UserID:       r.UserID,
			PreviousName: r.PreviousName,
			NewName:      r.NewName,
			IPAddress:    r.IPAddress,
			UserAgent:    r.UserAgent,
			CreatedAt:    r.CreatedAt,
		}
	}
	response.Paged(c, out, pag)
}

func toProfileDTO(u *models.UserModel) ProfileDTO {
	out := ProfileDTO{
		UserID:    u.UserID,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	return out
}
