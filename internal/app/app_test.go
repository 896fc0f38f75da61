package app

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	a := New(log, nil)
	a.store = repository.NewMemory()
	a.ws = &config.WebSocket{}
	a.cookies = config.NewCookiesWith(
		"", false, http.SameSiteLaxMode,
		config.NewJWTWithKeys(key, &key.PublicKey, time.Hour),
	)
	return a
}

func TestRoutes(t *testing.T) {
	config.Set("APP_BASE_PATH", "/api/")
	t.Cleanup(func() { config.Set("APP_BASE_PATH", "") })

	a := newTestApp(t)
	a.loadRoutes()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/healthz", http.StatusNoContent},
		{http.MethodPost, "/api/game", http.StatusOK},
		{http.MethodGet, "/api/highscores", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/api/game/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/game", http.StatusNotFound},
		{http.MethodGet, "/api/game", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCreateRandConcurrent(t *testing.T) {
	r := createRand()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Len(t, puzzle.NewPieces(r), puzzle.PieceCount)
			}
		}()
	}
	wg.Wait()
}

func TestNewLogger(t *testing.T) {
	config.Set("DEVELOPMENT", "1")
	config.Set("SOLVER_LOG", "true")
	t.Cleanup(func() {
		config.Set("DEVELOPMENT", "0")
		config.Set("SOLVER_LOG", "false")
		puzzle.Log.SetLevel(logrus.InfoLevel)
	})

	log, err := NewLogger()
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	assert.Equal(t, logrus.DebugLevel, puzzle.Log.GetLevel())
}

func TestNewLoggerWithFile(t *testing.T) {
	path := t.TempDir() + "/server.log"
	config.Set("DEVELOPMENT", "0")
	config.Set("LOG_FILE", path)
	t.Cleanup(func() { config.Set("LOG_FILE", "") })

	log, err := NewLogger()
	require.NoError(t, err)

	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Len(t, log.Hooks[logrus.InfoLevel], 1)
}
