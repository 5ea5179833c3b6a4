package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// CookieOptions parametriza las cookies de sesion. La cookie de acceso
// viaja SameSite=Lax; la de refresh necesita SameSite=None y por ende
// Secure, para sobrevivir navegacion cross-site desde el frontend.
type CookieOptions struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (o CookieOptions) accessMaxAge() int {
	return int(o.AccessTTL / time.Second)
}

func (o CookieOptions) refreshMaxAge() int {
	return int(o.RefreshTTL / time.Second)
}

// setAuthCookies escribe el par de cookies HTTP-only de la sesion.
func setAuthCookies(c *gin.Context, opts CookieOptions, accessToken, refreshToken string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     accessCookieName,
		Value:    accessToken,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   opts.accessMaxAge(),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   opts.refreshMaxAge(),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearAuthCookies invalida ambas cookies en el navegador.
func clearAuthCookies(c *gin.Context, opts CookieOptions) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   opts.Domain,
			MaxAge:   -1,
			Secure:   opts.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
