package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/middleware"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/services"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/store"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account
// POST /authentication/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		fail(c, "register", err)
		return
	}

	response.Created(c, gin.H{
		"username": user.Username,
		"roles":    user.RoleList(),
	})
}

// Login exchanges credentials for a token pair
// POST /authentication/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		fail(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Refresh rotates a refresh token into a new pair
// POST /authentication/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		fail(c, "refresh", err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Me returns the authenticated caller
// GET /v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, response.NewUnauthorized("authorization header required"))
		return
	}

	sessions, err := h.authService.ActiveSessions(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = response.NewUnauthorized("invalid or expired token")
		}
		fail(c, "me", err)
		return
	}

	response.Success(c, gin.H{
		"username":       claims.Subject,
		"roles":          claims.RoleList(),
		"identity":       middleware.GetIdentity(c),
		"activeSessions": sessions,
	})
}

// bindJSON decodes the body into dst. An empty body decodes to the zero
// value so field validation reports what is missing.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, response.NewValidation("invalid request body"))
		return false
	}
	return true
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// fail writes err. Rejections are logged at warn, storage and other
// unexpected failures at error.
func fail(c *gin.Context, action string, err error) {
	var appErr *response.AppError
	switch {
	case response.IsKind(err, response.KindAuthentication):
		logger.Warn().
			Str("request_id", logger.GetRequestID(c)).
			Str("action", action).
			Str("ip", c.ClientIP()).
			Str("reason", err.Error()).
			Msg("authentication rejected")
	case errors.As(err, &appErr):
	default:
		logger.Error().
			Err(err).
			Str("request_id", logger.GetRequestID(c)).
			Str("action", action).
			Msg("authentication request failed")
	}
	response.Error(c, err)
}
