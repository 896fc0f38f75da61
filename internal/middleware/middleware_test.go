package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/edgematch-server/internal/config"
)

func newCookies(t *testing.T) *config.Cookies {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	j := config.NewJWTWithKeys(key, &key.PublicKey, time.Hour)
	return config.NewCookiesWith("", false, http.SameSiteStrictMode, j)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(http.NotFoundHandler(), mark("inner"), mark("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuth(t *testing.T) {
	cookies := newCookies(t)
	var got *config.PlayerClaims
	h := Auth(quietLogger(), cookies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PlayerClaims(r.Context())
	}))

	t.Run("anonymous", func(t *testing.T) {
		got = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, got)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("signed in", func(t *testing.T) {
		login := httptest.NewRecorder()
		require.NoError(t, cookies.SignAndRefresh(login, 7, "alice"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		got = nil
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, got)
		assert.Equal(t, int64(7), got.PlayerId)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "a.b"})
		req.AddCookie(&http.Cookie{Name: "sign", Value: "c"})
		got = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Nil(t, got)
		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 2)
		assert.Equal(t, -1, cleared[0].MaxAge)
	})
}

func TestCors(t *testing.T) {
	h := Cors([]string{"https://example.com"})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggingRecordsStatus(t *testing.T) {
	log := quietLogger()
	var entry *logrus.Entry
	log.AddHook(&captureHook{fn: func(e *logrus.Entry) { entry = e }})

	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game", nil))

	require.NotNil(t, entry)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/game", entry.Data["uri"])
}

type captureHook struct {
	fn func(*logrus.Entry)
}

func (h *captureHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *captureHook) Fire(e *logrus.Entry) error {
	h.fn(e)
	return nil
}
