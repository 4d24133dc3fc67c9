package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appmiddleware "github.com/rollbook/rollbook-api/internal/middleware"
	"github.com/rollbook/rollbook-api/internal/service"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/response"
)

const oauthStateCookie = "oauth_state"

// AuthHandler exposes the Google sign-in flow and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler wires an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// Login godoc
// @Summary Begin Google sign-in
// @Description Redirects to the Google consent page.
// @Tags auth
// @Success 302
// @Router /auth/google [get]
func (h *AuthHandler) Login(c *gin.Context) {
	state := h.auth.GenerateState()
	c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, h.auth.LoginURL(state))
}

// Callback godoc
// @Summary Complete Google sign-in
// @Description Exchanges the authorization code, creates or updates the user and sets the session cookie.
// @Tags auth
// @Success 302
// @Failure 401 {object} response.Envelope
// @Router /auth/google/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		response.Error(c, apperrors.Clone(apperrors.ErrUnauthorized, "state mismatch"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrUnauthorized, "missing authorization code"))
		return
	}

	session, _, err := h.auth.HandleCallback(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("google sign-in failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	c.SetCookie(h.auth.CookieName(), session, h.auth.CookieMaxAge(), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout godoc
// @Summary End the session
// @Description Clears the session cookie.
// @Tags auth
// @Success 302
// @Router /logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.auth.CookieName(), "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

// CurrentUser godoc
// @Summary Current user
// @Description Returns the profile of the signed-in user.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/user [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	claims, ok := appmiddleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.Clone(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}
