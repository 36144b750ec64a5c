package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetWritesBothCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	Set(rec, "secret-123", "admin")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	key := byName[CookieKey]
	require.NotNil(t, key)
	assert.Equal(t, "secret-123", key.Value)
	assert.True(t, key.HttpOnly)
	assert.Equal(t, "/", key.Path)
	assert.WithinDuration(t, time.Now().Add(TTL), key.Expires, time.Minute)

	role := byName[CookieRole]
	require.NotNil(t, role)
	assert.Equal(t, "admin", role.Value)
	assert.False(t, role.HttpOnly)
}

func TestClearExpiresCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Less(t, c.MaxAge, 0, "cookie %s", c.Name)
		assert.Empty(t, c.Value)
	}
}

func TestKeyAndRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := Key(req)
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Empty(t, Role(req))

	req.AddCookie(&http.Cookie{Name: CookieKey, Value: "secret-123"})
	req.AddCookie(&http.Cookie{Name: CookieRole, Value: "admin"})

	key, err := Key(req)
	require.NoError(t, err)
	assert.Equal(t, "secret-123", key)
	assert.Equal(t, "admin", Role(req))
}

func TestKeyRejectsEmptyValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieKey, Value: ""})
	_, err := Key(req)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieKey, Value: "secret-123"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
