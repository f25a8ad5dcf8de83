package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/models"
	"github.com/rollcall/core/internal/pkg/jwt"
	"github.com/rollcall/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrResolutionFailed  = errors.New("identity resolution failed")
)

// Identity is a resolved principal: a stable id plus its persisted role.
type Identity struct {
	UserID string
	Role   string
}

// Auth returns a middleware that resolves the bearer credential to an
// identity and rejects the request if it cannot.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := ResolveIdentity(db, extractToken(c))
		if err != nil {
			if errors.Is(err, ErrResolutionFailed) {
				response.InternalError(c, err)
				return
			}
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, ident.UserID)
		c.Set(ContextKeyRole, ident.Role)
		c.Next()
	}
}

// OptionalAuth sets the identity if a valid credential is present, but does
// not block the request.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident, err := ResolveIdentity(db, extractToken(c)); err == nil {
			c.Set(ContextKeyUserID, ident.UserID)
			c.Set(ContextKeyRole, ident.Role)
		}
		c.Next()
	}
}

// RequireRole gates the request on the identity's persisted role. An empty
// allow-list admits any authenticated identity. The role comes from the
// store on every request; it is never cached across calls, so a role
// change takes effect on the next request.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			response.Unauthorized(c)
			return
		}
		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, role := range roles {
			if ident.Role == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c)
	}
}

// ResolveIdentity maps a bearer credential to a principal id and role.
// A principal without a stored profile resolves to the attendee role; no
// profile row is created here.
func ResolveIdentity(db *gorm.DB, rawToken string) (*Identity, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, ErrInvalidCredential
	}

	claims, err := jwt.Parse(token)
	if err != nil || claims.UserID == "" {
		return nil, ErrInvalidCredential
	}

	var row struct {
		Role string
	}
	err = db.Model(&models.UserModel{}).
		Select("role").
		Where("user_id = ?", claims.UserID).
		Scan(&row).Error
	if err != nil {
		return nil, errors.Join(ErrResolutionFailed, err)
	}

	role := row.Role
	if role == "" {
		role = models.RoleAttendee
	}
	return &Identity{UserID: claims.UserID, Role: role}, nil
}

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	id := CurrentUserID(c)
	if id == "" {
		return nil, false
	}
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(string)
	if role == "" {
		role = models.RoleAttendee
	}
	return &Identity{UserID: id, Role: role}, true
}

// CurrentUserID extracts the authenticated principal id from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
