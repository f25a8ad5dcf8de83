package checkin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/modules/session"
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
	g := rg.Group("/checkins", authMW)

	g.POST("", h.record)
	g.GET("", h.list)
	g.GET("/today", h.today)
}

// POST /checkins records attendance against a presented token.
func (h *Handler) record(c *gin.Context) {
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token is required")
		return
	}

	result, err := h.svc.Record(c.Request.Context(), middleware.CurrentUserID(c), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrTokenExpired):
			response.BadRequest(c, "this code has expired, scan the current one")
		case errors.Is(err, session.ErrTokenNotFound):
			response.BadRequest(c, "invalid check-in code")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}

// GET /checkins returns own history, or the full ledger for admins.
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	if ident.Role == models.RoleAdmin && c.Query("scope") == "all" {
		rows, pag, err := h.svc.ListAll(c.Request.Context(), q)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Paged(c, rows, pag)
		return
	}

	rows, pag, err := h.svc.ListOwn(c.Request.Context(), ident.UserID, q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pag)
}

// GET /checkins/today reports whether the caller already holds today's slot.
func (h *Handler) today(c *gin.Context) {
	done, err := h.svc.HasCheckedInToday(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"checked_in": done})
}
