package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/princinho/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestCookiePolicy_Attributes(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.CookieConfig
		wantSecure bool
		wantSite   http.SameSite
	}{
		{name: "development", cfg: config.CookieConfig{}, wantSecure: false, wantSite: http.SameSiteLaxMode},
		{name: "production", cfg: config.CookieConfig{Production: true}, wantSecure: true, wantSite: http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewCookiePolicy(tt.cfg)
			rec := httptest.NewRecorder()
			now := time.Now()
			policy.SetSessionCookies(rec, &TokenPair{
				AccessToken:      "access",
				RefreshToken:     "refresh",
				AccessExpiresAt:  now.Add(15 * time.Minute),
				RefreshExpiresAt: now.Add(7 * 24 * time.Hour),
			})

			cookies := cookiesByName(rec)
			require.Contains(t, cookies, AccessCookieName)
			require.Contains(t, cookies, RefreshCookieName)
			for _, c := range cookies {
				assert.True(t, c.HttpOnly)
				assert.Equal(t, tt.wantSecure, c.Secure)
				assert.Equal(t, tt.wantSite, c.SameSite)
				assert.Equal(t, "/", c.Path)
			}
			assert.Equal(t, "access", cookies[AccessCookieName].Value)
			assert.WithinDuration(t, now.Add(15*time.Minute), cookies[AccessCookieName].Expires, time.Second)
			assert.WithinDuration(t, now.Add(7*24*time.Hour), cookies[RefreshCookieName].Expires, time.Second)
		})
	}
}

func TestCookiePolicy_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookiePolicy(config.CookieConfig{}).ClearSessionCookies(rec)

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.True(t, c.Expires.Before(time.Now()))
		assert.True(t, c.HttpOnly)
	}
}

func TestCookiePolicy_SetReplacesQueuedSessionCookies(t *testing.T) {
	policy := NewCookiePolicy(config.CookieConfig{})
	rec := httptest.NewRecorder()
	http.SetCookie(rec, &http.Cookie{Name: "theme", Value: "dark"})

	now := time.Now()
	policy.SetSessionCookies(rec, &TokenPair{
		AccessToken: "first-access", RefreshToken: "first-refresh",
		AccessExpiresAt: now.Add(time.Minute), RefreshExpiresAt: now.Add(time.Hour),
	})
	policy.SetSessionCookies(rec, &TokenPair{
		AccessToken: "second-access", RefreshToken: "second-refresh",
		AccessExpiresAt: now.Add(time.Minute), RefreshExpiresAt: now.Add(time.Hour),
	})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	byName := cookiesByName(rec)
	assert.Equal(t, "dark", byName["theme"].Value)
	assert.Equal(t, "second-access", byName[AccessCookieName].Value)
	assert.Equal(t, "second-refresh", byName[RefreshCookieName].Value)
}

func TestCookiePolicy_ClearReplacesQueuedSessionCookies(t *testing.T) {
	policy := NewCookiePolicy(config.CookieConfig{})
	rec := httptest.NewRecorder()
	now := time.Now()
	policy.SetSessionCookies(rec, &TokenPair{
		AccessToken: "access", RefreshToken: "refresh",
		AccessExpiresAt: now.Add(time.Minute), RefreshExpiresAt: now.Add(time.Hour),
	})
	policy.ClearSessionCookies(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
	}
}
