package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, sess.IsNew())

	sess.SetUser("42")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	require.False(t, reloaded.IsNew())
	require.Equal(t, "42", reloaded.User())
	require.Equal(t, "dark", reloaded.Get("theme"))
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "expired-or-forged"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.True(t, sess.IsNew())
	require.Empty(t, sess.User())
}
