package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/usecase"
)

// IdentityHandler exposes endpoints for account registration and login.
type IdentityHandler struct {
	identity *usecase.IdentityService
	codec    *auth.Codec
}

func NewIdentityHandler(identity *usecase.IdentityService, codec *auth.Codec) *IdentityHandler {
	return &IdentityHandler{identity: identity, codec: codec}
}

// RegisterRoutes binds identity endpoints.
func (h *IdentityHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
}

// Register creates a new account with the USER role.
func (h *IdentityHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	user, err := h.identity.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, NewErrorResponse(c, "username already taken"))
			return
		}
		switch {
		case errors.Is(err, usecase.ErrUsernameTaken):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "username already taken"))
		case errors.Is(err, usecase.ErrPasswordPolicyViolation):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register user"))
		}
		return
	}

	user.PasswordHash = ""

	c.JSON(http.StatusCreated, RegisterResponse{User: newUserSummary(user)})
}

// Login verifies credentials and issues a signed access token. The token is
// returned both in the body and in the Authorization response header so
// clients can lift it straight into subsequent requests.
func (h *IdentityHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	token, user, err := h.identity.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid username or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to log in"))
		return
	}

	user.PasswordHash = ""

	c.Header(auth.AuthorizationHeader, auth.BearerPrefix+token)
	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.codec.TTL().Seconds()),
		User:        newUserSummary(user),
	})
}
