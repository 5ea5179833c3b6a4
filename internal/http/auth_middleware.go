package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/service"
)

const authSessionKey = "auth_session"

// AuthGuard protege rutas con el par de cookies de sesion. Cuando el
// access token expiro pero el refresh sigue vivo, renueva el par en la
// misma request (refresh silencioso) y reescribe las cookies.
type AuthGuard struct {
	logger     *zap.Logger
	tokens     *service.TokenService
	sessions   service.SessionStore
	cookies    CookieOptions
	sessionTTL time.Duration
}

func NewAuthGuard(
	logger *zap.Logger,
	tokens *service.TokenService,
	sessions service.SessionStore,
	cookies CookieOptions,
	sessionTTL time.Duration,
) *AuthGuard {
	return &AuthGuard{
		logger:     logger,
		tokens:     tokens,
		sessions:   sessions,
		cookies:    cookies,
		sessionTTL: sessionTTL,
	}
}

// RequireAuth autentica la request y deja el snapshot de sesion en el
// contexto. La existencia del snapshot en el store es la autoridad de
// revocacion: un token valido sin snapshot no autentica.
func (g *AuthGuard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		access, err := c.Cookie(accessCookieName)
		if err != nil || access == "" {
			fail(c, http.StatusUnauthorized, "please login to access this resource")
			c.Abort()
			return
		}

		// La expiracion se lee sin verificar firma solo para elegir
		// camino; ambos caminos verifican firma antes de confiar.
		if exp, ok := g.tokens.DecodeExpiry(access); ok && time.Now().Before(exp) {
			if g.authenticateAccess(c, access) {
				c.Next()
			}
			return
		}

		if g.refreshSession(c) {
			c.Next()
		}
	}
}

// RequireRoles exige que el snapshot autenticado tenga alguno de los
// roles dados. Debe encadenarse despues de RequireAuth.
func (g *AuthGuard) RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, ok := CurrentUser(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "please login to access this resource")
			c.Abort()
			return
		}
		if !domain.Allows(snap.Role, roles...) {
			fail(c, http.StatusForbidden, "role "+string(snap.Role)+" is not allowed to access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *AuthGuard) authenticateAccess(c *gin.Context, access string) bool {
	claims, err := g.tokens.VerifyAccess(access)
	if err != nil {
		fail(c, http.StatusUnauthorized, "access token is not valid")
		c.Abort()
		return false
	}

	snap, err := g.sessions.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			fail(c, http.StatusUnauthorized, "please login to access this resource")
		} else {
			g.logger.Error("session lookup failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "could not load session")
		}
		c.Abort()
		return false
	}

	c.Set(authSessionKey, snap)
	return true
}

func (g *AuthGuard) refreshSession(c *gin.Context) bool {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		c.Abort()
		return false
	}

	claims, err := g.tokens.VerifyRefresh(refresh)
	if err != nil {
		fail(c, http.StatusUnauthorized, "could not refresh token")
		c.Abort()
		return false
	}

	snap, err := g.sessions.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			fail(c, http.StatusUnauthorized, "please login to access this resource")
		} else {
			g.logger.Error("session lookup failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "could not load session")
		}
		c.Abort()
		return false
	}

	pair, err := g.tokens.IssuePair(snap.ID)
	if err != nil {
		g.logger.Error("token refresh failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not refresh token")
		c.Abort()
		return false
	}

	// Renovar la sesion extiende su TTL junto con el nuevo par.
	// Dos refresh concurrentes terminan con las cookies del ultimo
	// en responder; ambos pares siguen siendo validos contra la
	// misma sesion.
	if err := g.sessions.Put(c.Request.Context(), snap.ID, snap, g.sessionTTL); err != nil {
		g.logger.Error("session renew failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "could not refresh token")
		c.Abort()
		return false
	}

	setAuthCookies(c, g.cookies, pair.AccessToken, pair.RefreshToken)
	c.Set(authSessionKey, snap)
	return true
}

// CurrentUser obtiene el snapshot autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.SessionSnapshot, bool) {
	val, ok := c.Get(authSessionKey)
	if !ok {
		return domain.SessionSnapshot{}, false
	}
	snap, ok := val.(domain.SessionSnapshot)
	return snap, ok
}
