package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios y auth.
type UserHandler struct {
	logger     *zap.Logger
	userServ   *service.UserService
	tokens     *service.TokenService
	sessions   service.SessionStore
	cookies    CookieOptions
	sessionTTL time.Duration
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	tokens *service.TokenService,
	sessions service.SessionStore,
	cookies CookieOptions,
	sessionTTL time.Duration,
) *UserHandler {
	return &UserHandler{
		logger:     logger,
		userServ:   userServ,
		tokens:     tokens,
		sessions:   sessions,
		cookies:    cookies,
		sessionTTL: sessionTTL,
	}
}

// Register maneja POST /registration.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid registration request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.userServ.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"message":          "please check your email to activate your account",
		"activation_token": token,
	})
}

// Activate maneja POST /activate-user.
func (h *UserHandler) Activate(c *gin.Context) {
	var req struct {
		Token string `json:"activation_token" binding:"required"`
		Code  string `json:"activation_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid activation request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.Activate(c.Request.Context(), req.Token, req.Code)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// Login maneja POST /login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	h.sendToken(c, user)
}

// SocialAuth maneja POST /social-auth. La identidad ya viene validada
// por el proveedor externo del frontend.
func (h *UserHandler) SocialAuth(c *gin.Context) {
	var req struct {
		Name   string `json:"name" binding:"required"`
		Email  string `json:"email" binding:"required"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid social auth request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.SocialAuth(c.Request.Context(), req.Name, req.Email, req.Avatar)
	if err != nil {
		failErr(c, err)
		return
	}

	h.sendToken(c, user)
}

// Logout maneja GET /logout.
func (h *UserHandler) Logout(c *gin.Context) {
	if snap, ok := CurrentUser(c); ok {
		if err := h.sessions.Delete(c.Request.Context(), snap.ID); err != nil {
			h.logger.Warn("session delete failed", zap.Error(err))
		}
	}
	clearAuthCookies(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out successfully"})
}

// Refresh maneja GET /refresh: renueva el par de tokens a partir de la
// cookie de refresh vigente.
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		fail(c, http.StatusUnauthorized, "could not refresh token")
		return
	}

	claims, err := h.tokens.VerifyRefresh(refresh)
	if err != nil {
		failErr(c, err)
		return
	}

	snap, err := h.sessions.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	pair, err := h.tokens.IssuePair(snap.ID)
	if err != nil {
		h.logger.Error("token refresh failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not refresh token")
		return
	}
	if err := h.sessions.Put(c.Request.Context(), snap.ID, snap, h.sessionTTL); err != nil {
		h.logger.Error("session renew failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not refresh token")
		return
	}

	setAuthCookies(c, h.cookies, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"success": true, "access_token": pair.AccessToken})
}

// GetMe maneja GET /me.
func (h *UserHandler) GetMe(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), snap.ID)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateInfo maneja PUT /update-user-info.
func (h *UserHandler) UpdateInfo(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.UpdateInfo(c.Request.Context(), snap.ID, req.Name, req.Email)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdatePassword maneja PUT /update-user-password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.UpdatePassword(c.Request.Context(), snap.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateAvatar maneja PUT /update-user-avatar.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		Avatar string `json:"avatar" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.UpdateAvatar(c.Request.Context(), snap.ID, req.Avatar)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListUsers maneja GET /get-users (solo admin).
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userServ.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// UpdateRole maneja PUT /update-user-role (solo admin).
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userServ.UpdateRoleByEmail(c.Request.Context(), req.Email, domain.Role(req.Role))
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// DeleteUser maneja DELETE /delete-user/:id (solo admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted successfully"})
}

// sendToken emite el par de tokens, persiste la sesion y escribe las
// cookies. El usuario se responde sin hash de clave.
func (h *UserHandler) sendToken(c *gin.Context, user domain.User) {
	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not issue tokens")
		return
	}

	if err := h.sessions.Put(c.Request.Context(), user.ID, user.Snapshot(), h.sessionTTL); err != nil {
		h.logger.Error("session put failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not create session")
		return
	}

	setAuthCookies(c, h.cookies, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"user":         user,
		"access_token": pair.AccessToken,
	})
}
