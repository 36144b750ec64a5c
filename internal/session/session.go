// Package session handles the admin credential cookies served by the kiosk
// display: the backend secret key and the role returned by validation.
package session

import (
	"errors"
	"net/http"
	"time"
)

const (
	// CookieKey holds the backend secret key.
	CookieKey = "secretKey"
	// CookieRole holds the validated role.
	CookieRole = "role"

	// TTL matches the 7-day expiry the admin pages use.
	TTL = 7 * 24 * time.Hour
)

// ErrNoCredential is returned when no secret key cookie is present.
var ErrNoCredential = errors.New("no credential present")

// Set writes the credential cookies with the standard expiry and root path.
func Set(w http.ResponseWriter, secretKey, role string) {
	expires := time.Now().Add(TTL)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieKey,
		Value:    secretKey,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:    CookieRole,
		Value:   role,
		Path:    "/",
		Expires: expires,
	})
}

// Clear expires both credential cookies.
func Clear(w http.ResponseWriter) {
	for _, name := range []string{CookieKey, CookieRole} {
		http.SetCookie(w, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		})
	}
}

// Key reads the secret key cookie. Absence is ErrNoCredential.
func Key(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieKey)
	if err != nil || c.Value == "" {
		return "", ErrNoCredential
	}
	return c.Value, nil
}

// Role reads the role cookie, empty when absent.
func Role(r *http.Request) string {
	c, err := r.Cookie(CookieRole)
	if err != nil {
		return ""
	}
	return c.Value
}

// Middleware redirects to the login entry point when no credential cookie is
// present. API handlers still validate the key against the backend per call.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := Key(r); err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
