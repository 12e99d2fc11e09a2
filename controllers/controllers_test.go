package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/database"
	"github.com/princinho/storefront/middleware"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []utils.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg utils.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (s *memoryObjects) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = true
	return "https://cdn.example.com/" + name, nil
}

func (s *memoryObjects) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

type testEnv struct {
	app     *App
	router  *gin.Engine
	store   *database.MemoryUserStore
	mailer  *recordingMailer
	objects *memoryObjects
}

var tokenCfg = config.TokenConfig{
	AccessSecret:  []byte("access-secret-for-tests"),
	RefreshSecret: []byte("refresh-secret-for-tests"),
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    7 * 24 * time.Hour,
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := database.NewMemoryUserStore()
	issuer := utils.NewTokenIssuer(tokenCfg)
	mailer := &recordingMailer{}
	objects := &memoryObjects{objects: map[string]bool{}}

	app := &App{
		Users:        store,
		Tokens:       issuer,
		Auth:         middleware.NewAuthenticator(store, issuer, logger),
		Cookies:      utils.NewCookiePolicy(config.CookieConfig{}),
		Resets:       utils.NewResetTokenManager(store, config.ResetConfig{TTL: 15 * time.Minute}, bcrypt.MinCost),
		Mailer:       mailer,
		Avatars:      utils.NewAvatarUploader(objects, utils.NewImageValidator(config.StorageConfig{}), logger),
		ResetURLBase: "https://shop.example.com/",
		BcryptCost:   bcrypt.MinCost,
		Logger:       logger,
	}
	return &testEnv{
		app:     app,
		router:  NewRouter(app, []string{"https://shop.example.com"}),
		store:   store,
		mailer:  mailer,
		objects: objects,
	}
}

func (e *testEnv) seedUser(t *testing.T, email, password string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "Seeded", Email: email, Role: role}
	require.NoError(t, u.SetPassword(password, bcrypt.MinCost))
	require.NoError(t, e.store.Save(context.Background(), u))
	return u
}

func (e *testEnv) bearer(t *testing.T, u *models.User) string {
	t.Helper()
	pair, err := e.app.Tokens.Issue(u)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path string, body any, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func withAuth(header string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", header) }
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/register", gin.H{
		"name": "  Ana   Silva ", "email": "Ana@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ana Silva", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := responseCookies(rec)
	require.Contains(t, cookies, utils.AccessCookieName)
	require.Contains(t, cookies, utils.RefreshCookieName)

	me := env.do(t, http.MethodGet, "/api/v1/me", nil, withCookie(utils.AccessCookieName, cookies[utils.AccessCookieName].Value))
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ana@example.com", decode(t, me)["user"].(map[string]any)["email"])

	me = env.do(t, http.MethodGet, "/api/v1/me", nil, withAuth("Bearer "+body["accessToken"].(string)))
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@example.com", "secret1", models.RoleUser)

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{name: "missing fields", body: gin.H{"email": "a@example.com"}, message: "Name, email, and password are required"},
		{name: "short password", body: gin.H{"name": "A", "email": "a@example.com", "password": "123"}, message: "Name, email, and password are required"},
		{name: "duplicate email", body: gin.H{"name": "A", "email": "TAKEN@example.com", "password": "secret1"}, message: "Email already exists"},
		{name: "password over 72 characters", body: gin.H{"name": "A", "email": "a@example.com", "password": strings.Repeat("p", 80)}, message: "Name, email, and password are required"},
		{name: "password over 72 bytes", body: gin.H{"name": "A", "email": "a@example.com", "password": strings.Repeat("é", 40)}, message: "Password must not exceed 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestRegister_MultipartWithAvatar(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Zoé"))
	require.NoError(t, w.WriteField("email", "zoe@example.com"))
	require.NoError(t, w.WriteField("password", "secret1"))
	part, err := w.CreateFormFile(avatarField, "me.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	file := decode(t, rec)["user"].(map[string]any)["file"].(map[string]any)
	objectName := file["public_id"].(string)
	assert.True(t, strings.HasPrefix(objectName, "avatars/zoe-"))
	assert.True(t, env.objects.objects[objectName])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)

	tests := []struct {
		name     string
		body     gin.H
		wantCode int
	}{
		{name: "ok", body: gin.H{"email": "ana@example.com", "password": "secret1"}, wantCode: http.StatusOK},
		{name: "email case insensitive", body: gin.H{"email": "ANA@example.com", "password": "secret1"}, wantCode: http.StatusOK},
		{name: "wrong password", body: gin.H{"email": "ana@example.com", "password": "nope"}, wantCode: http.StatusUnauthorized},
		{name: "unknown email", body: gin.H{"email": "bob@example.com", "password": "secret1"}, wantCode: http.StatusUnauthorized},
		{name: "missing password", body: gin.H{"email": "ana@example.com"}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/login", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, "Invalid email or password", decode(t, rec)["message"])
			}
			if tt.wantCode == http.StatusOK {
				assert.NotEmpty(t, decode(t, rec)["accessToken"])
				assert.Len(t, rec.Result().Cookies(), 2)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/logout", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged Out", decode(t, rec)["message"])
	cookies := responseCookies(rec)
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.True(t, c.Expires.Before(time.Now()))
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	pair, err := env.app.Tokens.Issue(u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/refresh-token", nil, withCookie(utils.RefreshCookieName, pair.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code)
	access := decode(t, rec)["accessToken"].(string)
	claims, err := env.app.Tokens.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)

	rec = env.do(t, http.MethodGet, "/api/v1/refresh-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/refresh-token", nil, withCookie(utils.RefreshCookieName, pair.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionRenewalThroughRouter(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleAdmin)

	past := time.Now().Add(-30 * time.Minute)
	old, err := env.app.Tokens.WithClock(func() time.Time { return past }).Issue(u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/users", nil,
		withCookie(utils.AccessCookieName, old.AccessToken),
		withCookie(utils.RefreshCookieName, old.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := responseCookies(rec)
	require.Contains(t, cookies, utils.AccessCookieName)
	claims, err := env.app.Tokens.VerifyAccess(cookies[utils.AccessCookieName].Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/v1/password/forgot", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	unknownMessage := decode(t, rec)["message"]
	assert.Empty(t, env.mailer.sent)

	rec = env.do(t, http.MethodPost, "/api/v1/password/forgot", gin.H{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, unknownMessage, decode(t, rec)["message"])
	require.Len(t, env.mailer.sent, 1)

	mail := env.mailer.sent[0]
	assert.Equal(t, "ana@example.com", mail.To)
	const prefix = "https://shop.example.com/password/reset/"
	idx := strings.Index(mail.Body, prefix)
	require.GreaterOrEqual(t, idx, 0, mail.Body)
	token := strings.Fields(mail.Body[idx+len(prefix):])[0]
	require.Len(t, token, 40)

	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": "newpass1", "confirmPassword": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Passwords do not match", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": "newpass1", "confirmPassword": "newpass1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/login", gin.H{"email": "ana@example.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": "again12", "confirmPassword": "again12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Reset Password Token is invalid or has expired", decode(t, rec)["message"])
}

func TestForgotPassword_MailFailureClearsToken(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	env.mailer.err = errors.New("smtp down")

	rec := env.do(t, http.MethodPost, "/api/v1/password/forgot", gin.H{"email": "ana@example.com"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode(t, rec)["message"])

	stored, err := env.store.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpire)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	auth := withAuth(env.bearer(t, u))

	rec := env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
		"oldPassword": "wrong", "newPassword": "newpass1", "confirmPassword": "newpass1",
	}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Old password is incorrect", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
		"oldPassword": "secret1", "newPassword": "newpass1", "confirmPassword": "newpass1",
	}, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 2)

	rec = env.do(t, http.MethodPost, "/api/v1/login", gin.H{"email": "ana@example.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
		"oldPassword": "secret1", "newPassword": "x1234567", "confirmPassword": "x1234567",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdatePassword_TooLong(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	auth := withAuth(env.bearer(t, u))

	for _, pw := range []string{strings.Repeat("p", 80), strings.Repeat("é", 40)} {
		rec := env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
			"oldPassword": "secret1", "newPassword": pw, "confirmPassword": pw,
		}, auth)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodPost, "/api/v1/login", gin.H{"email": "ana@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPassword_TooLong(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	token, err := env.app.Resets.Issue(context.Background(), u)
	require.NoError(t, err)

	long := strings.Repeat("é", 40)
	rec := env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": long, "confirmPassword": long})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must not exceed 72 bytes", decode(t, rec)["message"])

	ascii := strings.Repeat("p", 80)
	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": ascii, "confirmPassword": ascii})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the token survives a rejected password
	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": "newpass1", "confirmPassword": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePassword_AfterRenewalSetsOneCookiePair(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)

	past := time.Now().Add(-30 * time.Minute)
	old, err := env.app.Tokens.WithClock(func() time.Time { return past }).Issue(u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
		"oldPassword": "secret1", "newPassword": "newpass1", "confirmPassword": "newpass1",
	},
		withCookie(utils.AccessCookieName, old.AccessToken),
		withCookie(utils.RefreshCookieName, old.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, decode(t, rec)["accessToken"], responseCookies(rec)[utils.AccessCookieName].Value)
}

func TestUpdatePassword_ClearsPendingReset(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	token, err := env.app.Resets.Issue(context.Background(), u)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/api/v1/password/update", gin.H{
		"oldPassword": "secret1", "newPassword": "newpass1", "confirmPassword": "newpass1",
	}, withAuth(env.bearer(t, u)))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.store.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpire)

	rec = env.do(t, http.MethodPut, "/api/v1/password/reset/"+token, gin.H{"password": "hijack1", "confirmPassword": "hijack1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/login", gin.H{"email": "ana@example.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	env.seedUser(t, "taken@example.com", "secret1", models.RoleUser)
	auth := withAuth(env.bearer(t, u))

	rec := env.do(t, http.MethodPut, "/api/v1/me/update", gin.H{"email": "taken@example.com"}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPut, "/api/v1/me/update", gin.H{"name": "Ana Maria"}, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Ana Maria", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", "secret1", models.RoleAdmin)
	member := env.seedUser(t, "ana@example.com", "secret1", models.RoleUser)
	asAdmin := withAuth(env.bearer(t, admin))
	asMember := withAuth(env.bearer(t, member))

	rec := env.do(t, http.MethodGet, "/api/v1/admin/users", nil, asMember)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Role: user is not allowed to access this resource", decode(t, rec)["message"])

	rec = env.do(t, http.MethodGet, "/api/v1/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/users", nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["users"], 2)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/user/not-an-id", nil, asAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/user/"+"0123456789abcdef01234567", nil, asAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/user/"+member.ID.Hex(), nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/admin/user/"+member.ID.Hex(), gin.H{"role": "superuser"}, asAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/admin/user/"+member.ID.Hex(), gin.H{"role": "ADMIN"}, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode(t, rec)["user"].(map[string]any)["role"])

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/user/"+member.ID.Hex(), nil, asAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	// the deleted account's token no longer authenticates
	rec = env.do(t, http.MethodGet, "/api/v1/me", nil, asMember)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}
