// ABOUTME: Session cookie contract shared by login, logout, and identify
// ABOUTME: One place owns the name and flags so handlers cannot drift

package auth

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// cookieMaxAge mirrors TokenTTL in seconds. The cookie and the token it
// carries expire together.
const cookieMaxAge = int(TokenTTL / time.Second)

// SetTokenCookie attaches the session cookie to a response. Pass secure
// true for production deployments; requests that already arrived over TLS
// get the flag either way.
func SetTokenCookie(w http.ResponseWriter, r *http.Request, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the session cookie immediately.
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
