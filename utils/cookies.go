package utils

import (
	"net/http"
	"time"

	"github.com/princinho/storefront/config"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CookiePolicy decides the attributes of the session cookies. Production
// deployments serve the storefront from another origin, so they need
// Secure + SameSite=None.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
	Path     string
}

func NewCookiePolicy(cfg config.CookieConfig) CookiePolicy {
	p := CookiePolicy{
		SameSite: http.SameSiteLaxMode,
		Domain:   cfg.Domain,
		Path:     "/",
	}
	if cfg.Production {
		p.Secure = true
		p.SameSite = http.SameSiteNoneMode
	}
	return p
}

// SetSessionCookies writes both tokens, each expiring with its token. Session
// cookies queued earlier on w, e.g. by a renewal in RequireAuth, are replaced.
func (p CookiePolicy) SetSessionCookies(w http.ResponseWriter, pair *TokenPair) {
	dropSessionCookies(w.Header())
	http.SetCookie(w, p.cookie(AccessCookieName, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, p.cookie(RefreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (p CookiePolicy) ClearSessionCookies(w http.ResponseWriter) {
	dropSessionCookies(w.Header())
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := p.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (p CookiePolicy) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     p.Path,
		Domain:   p.Domain,
		Expires:  expires.UTC(),
		Secure:   p.Secure,
		HttpOnly: true,
		SameSite: p.SameSite,
	}
}

func dropSessionCookies(h http.Header) {
	queued := h.Values("Set-Cookie")
	if len(queued) == 0 {
		return
	}
	kept := make([]string, 0, len(queued))
	for _, line := range queued {
		if c, err := http.ParseSetCookie(line); err == nil && (c.Name == AccessCookieName || c.Name == RefreshCookieName) {
			continue
		}
		kept = append(kept, line)
	}
	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
}
