package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/store"
	"github.com/MrEthical07/lmsAuth/store/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendActivation(_ context.Context, mail lmsAuth.ActivationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[mail.Email] = mail.Code
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type fakeMedia struct {
	destroyed []string
}

func (f *fakeMedia) Upload(_ context.Context, id string, _ []byte, _ string) (lmsAuth.Avatar, error) {
	return lmsAuth.Avatar{PublicID: "avatars/" + id, URL: "https://cdn.example.com/avatars/" + id}, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type testServer struct {
	handler       http.Handler
	engine        *lmsAuth.Engine
	principals    *memory.Principals
	notifications *memory.Notifications
	mailer        *captureMailer
	redis         *miniredis.Miniredis
}

func newTestServer(t *testing.T, mutate func(*Options)) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := lmsAuth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("api-access-secret")
	cfg.JWT.RefreshSecret = []byte("api-refresh-secret")
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.Audit.Enabled = false

	ts := &testServer{
		principals:    memory.NewPrincipals(),
		notifications: memory.NewNotifications(),
		mailer:        &captureMailer{},
		redis:         mr,
	}
	ts.engine, err = lmsAuth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalStore(ts.principals).
		WithMailer(ts.mailer).
		WithMediaProvider(&fakeMedia{}).
		Build()
	require.NoError(t, err)
	t.Cleanup(ts.engine.Close)

	opts := Options{
		Engine:        ts.engine,
		Notifications: ts.notifications,
		Origins:       []string{"https://app.example.com"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	ts.handler = NewRouter(opts)
	return ts
}

type result struct {
	status  int
	body    map[string]any
	cookies []*http.Cookie
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) result {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	out := result{status: rec.Code, cookies: rec.Result().Cookies()}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.body), rec.Body.String())
	}
	return out
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (ts *testServer) signIn(t *testing.T, email, name string) (string, []*http.Cookie) {
	t.Helper()
	res := ts.do(t, http.MethodPost, "/api/v1/social-auth", map[string]string{"email": email, "name": name})
	require.Equal(t, http.StatusOK, res.status, res.body)
	user := res.body["user"].(map[string]any)
	return user["id"].(string), res.cookies
}

func TestHealthAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.do(t, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, true, res.body["success"])
	assert.Equal(t, "API is working", res.body["message"])

	res = ts.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, false, res.body["success"])
	assert.Equal(t, "Can't find /api/v1/nope on this server", res.body["message"])
}

func TestRegisterActivateLoginLogout(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.do(t, http.MethodPost, "/api/v1/registration", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret-1",
	})
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Equal(t, "An email has been sent to alice@example.com. Please check your email to activate your account", res.body["message"])
	token, _ := res.body["activationToken"].(string)
	require.NotEmpty(t, token)
	assert.NotContains(t, res.body, "activationCode")

	res = ts.do(t, http.MethodPost, "/api/v1/activate-user", map[string]string{
		"activation_token": token, "activation_code": "not-it",
	})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid activation code", res.body["message"])

	res = ts.do(t, http.MethodPost, "/api/v1/activate-user", map[string]string{
		"activation_token": token, "activation_code": ts.mailer.code("alice@example.com"),
	})
	require.Equal(t, http.StatusCreated, res.status, res.body)

	res = ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid email or password", res.body["message"])

	res = ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": "alice@example.com", "password": "secret-1"})
	require.Equal(t, http.StatusOK, res.status, res.body)
	access := cookieNamed(res.cookies, ts.engine.AccessCookieName())
	refresh := cookieNamed(res.cookies, ts.engine.RefreshCookieName())
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, access.Value, res.body["accessToken"])
	user := res.body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	res = ts.do(t, http.MethodGet, "/api/v1/me", nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "Alice", res.body["user"].(map[string]any)["name"])

	res = ts.do(t, http.MethodGet, "/api/v1/logout", nil, access)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Logged out successfully", res.body["message"])
	cleared := cookieNamed(res.cookies, ts.engine.AccessCookieName())
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	res = ts.do(t, http.MethodGet, "/api/v1/me", nil, access)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Please login to access this resource", res.body["message"])
}

func TestLogoutClearsCookiesWhenCacheIsDown(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookies := ts.signIn(t, "lena@example.com", "Lena")
	access := cookieNamed(cookies, ts.engine.AccessCookieName())
	require.NotNil(t, access)

	ts.redis.Close()

	res := ts.do(t, http.MethodGet, "/api/v1/logout", nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "Logged out successfully", res.body["message"])
	for _, name := range []string{ts.engine.AccessCookieName(), ts.engine.RefreshCookieName()} {
		c := cookieNamed(res.cookies, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value, name)
		assert.Negative(t, c.MaxAge, name)
	}
}

func TestLogoutRequiresAccessToken(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.do(t, http.MethodGet, "/api/v1/logout", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Please login to access this resource", res.body["message"])
	assert.Empty(t, res.cookies)
}

func TestRegistrationValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	res := ts.do(t, http.MethodPost, "/api/v1/registration", map[string]string{"name": "Bob"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Please enter all required fields", res.body["message"])

	res = ts.do(t, http.MethodPost, "/api/v1/registration", map[string]string{
		"name": "Bob", "email": "not-an-email", "password": "secret-1",
	})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Field 'email' must be a valid email address", res.body["message"])

	res = ts.do(t, http.MethodPost, "/api/v1/registration", "{not json")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid request body", res.body["message"])
}

func TestRefreshRotatesAndFailsAfterEviction(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookies := ts.signIn(t, "carol@example.com", "Carol")
	refresh := cookieNamed(cookies, ts.engine.RefreshCookieName())
	require.NotNil(t, refresh)

	res := ts.do(t, http.MethodGet, "/api/v1/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.NotEmpty(t, res.body["accessToken"])
	assert.NotNil(t, cookieNamed(res.cookies, ts.engine.AccessCookieName()))
	assert.NotNil(t, cookieNamed(res.cookies, ts.engine.RefreshCookieName()))

	res = ts.do(t, http.MethodGet, "/api/v1/refresh", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)

	ts.redis.FlushAll()
	res = ts.do(t, http.MethodGet, "/api/v1/refresh", nil, refresh)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Please login to access this resource", res.body["message"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	ts := newTestServer(t, nil)
	id, cookies := ts.signIn(t, "dave@example.com", "Dave")
	access := cookieNamed(cookies, ts.engine.AccessCookieName())

	res := ts.do(t, http.MethodGet, "/api/v1/get-users", nil, access)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "You are not authorized to access this resource", res.body["message"])

	_, err := ts.engine.UpdateRole(context.Background(), id, lmsAuth.RoleAdmin)
	require.NoError(t, err)

	res = ts.do(t, http.MethodGet, "/api/v1/get-users", nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Len(t, res.body["users"], 1)

	res = ts.do(t, http.MethodPut, "/api/v1/update-user", map[string]string{"id": id, "role": "owner"}, access)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Field 'role' must be one of: user admin", res.body["message"])

	res = ts.do(t, http.MethodDelete, "/api/v1/delete-user/not-a-uuid", nil, access)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Resource not found. Invalid: id", res.body["message"])
}

func TestDeleteUserByAdmin(t *testing.T) {
	ts := newTestServer(t, nil)
	adminID, cookies := ts.signIn(t, "erin@example.com", "Erin")
	_, err := ts.engine.UpdateRole(context.Background(), adminID, lmsAuth.RoleAdmin)
	require.NoError(t, err)
	targetID, _ := ts.signIn(t, "frank@example.com", "Frank")

	access := cookieNamed(cookies, ts.engine.AccessCookieName())
	res := ts.do(t, http.MethodDelete, "/api/v1/delete-user/"+targetID, nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "User deleted successfully", res.body["message"])

	res = ts.do(t, http.MethodDelete, "/api/v1/delete-user/"+targetID, nil, access)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestAccountUpdates(t *testing.T) {
	ts := newTestServer(t, nil)
	_, cookies := ts.signIn(t, "gina@example.com", "Gina")
	access := cookieNamed(cookies, ts.engine.AccessCookieName())

	res := ts.do(t, http.MethodPut, "/api/v1/update-user-info", map[string]string{"name": "Gina B"}, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "Gina B", res.body["user"].(map[string]any)["name"])

	res = ts.do(t, http.MethodPut, "/api/v1/update-user-password", map[string]string{
		"currentPassword": "x", "newPassword": "secret-2",
	}, access)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = ts.do(t, http.MethodPut, "/api/v1/update-user-avatar", map[string]string{"avatar": "not a data url"}, access)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid avatar image", res.body["message"])

	res = ts.do(t, http.MethodPut, "/api/v1/update-user-avatar", map[string]string{
		"avatar": "data:image/png;base64,iVBORw0KGgo=",
	}, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	avatar := res.body["user"].(map[string]any)["avatar"].(map[string]any)
	assert.True(t, strings.HasPrefix(avatar["url"].(string), "https://cdn.example.com/avatars/"))
}

func TestNotificationRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	adminID, cookies := ts.signIn(t, "hank@example.com", "Hank")
	_, err := ts.engine.UpdateRole(context.Background(), adminID, lmsAuth.RoleAdmin)
	require.NoError(t, err)
	access := cookieNamed(cookies, ts.engine.AccessCookieName())

	n, err := ts.notifications.CreateNotification(context.Background(), store.Notification{
		PrincipalID: adminID,
		Title:       "New order",
		Message:     "A course was purchased",
	})
	require.NoError(t, err)

	res := ts.do(t, http.MethodGet, "/api/v1/get-all-notifications", nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Len(t, res.body["notifications"], 1)

	res = ts.do(t, http.MethodPut, "/api/v1/update-notification/"+n.ID, nil, access)
	require.Equal(t, http.StatusOK, res.status, res.body)
	items := res.body["notifications"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "read", items[0].(map[string]any)["status"])

	res = ts.do(t, http.MethodPut, "/api/v1/update-notification/00000000-0000-0000-0000-000000000000", nil, access)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Notification not found", res.body["message"])
}

func TestNotificationRoutesAbsentWithoutStore(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.Notifications = nil })
	adminID, cookies := ts.signIn(t, "ivy@example.com", "Ivy")
	_, err := ts.engine.UpdateRole(context.Background(), adminID, lmsAuth.RoleAdmin)
	require.NoError(t, err)

	res := ts.do(t, http.MethodGet, "/api/v1/get-all-notifications", nil, cookieNamed(cookies, ts.engine.AccessCookieName()))
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.MaxBodyBytes = 64 })

	res := ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "someone@example.com",
		"password": strings.Repeat("x", 128),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.status)
	assert.Equal(t, "Request body too large", res.body["message"])
}

func preflight(t *testing.T, h http.Handler, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := preflight(t, ts.handler, "https://app.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = preflight(t, ts.handler, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOriginSettings(t *testing.T) {
	wildcard := newTestServer(t, func(o *Options) { o.Origins = []string{"*"} })
	rec := preflight(t, wildcard.handler, "https://any.example.com")
	assert.Equal(t, "https://any.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	none := newTestServer(t, func(o *Options) { o.Origins = nil })
	rec = preflight(t, none.handler, "https://any.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRouteMountedWhenConfigured(t *testing.T) {
	ts := newTestServer(t, func(o *Options) {
		o.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
	})

	res := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, true, res.body["ok"])
}
