package session

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sessions", authMW, middleware.RequireRole(models.RoleAdmin))

	g.POST("", h.issue)
	g.GET("/current", h.current)
}

// POST /sessions mints a fresh check-in credential.
func (h *Handler) issue(c *gin.Context) {
	session, err := h.svc.Issue(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"session": toDTO(session)})
}

// GET /sessions/current returns the newest still-valid credential, or null.
func (h *Handler) current(c *gin.Context) {
	session, err := h.svc.Current(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			response.OK(c, gin.H{"session": nil})
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"session": toDTO(session)})
}
