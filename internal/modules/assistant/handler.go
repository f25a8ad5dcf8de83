package assistant

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/response"
)

// ChatRequest is the body of POST /assistant/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/assistant", authMW, middleware.RequireRole(models.RoleAdmin))
	g.POST("/chat", h.chat)
}

// POST /assistant/chat
func (h *Handler) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "message is required")
		return
	}

	result, err := h.svc.Chat(c.Request.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisabled):
			response.NotFoundMsg(c, "assistant is not enabled on this deployment")
		case errors.Is(err, ErrStepLimit):
			response.UnprocessableEntity(c, "the assistant could not finish within its step limit")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, result)
}
