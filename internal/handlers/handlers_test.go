package handlers

import (
	"context"
	crand "crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/middleware"
	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	store  *repository.Memory
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	key, err := rsa.GenerateKey(crand.Reader, 2048)
	require.NoError(t, err)
	cookies := config.NewCookiesWith(
		"", false, http.SameSiteStrictMode,
		config.NewJWTWithKeys(key, &key.PublicKey, time.Hour),
	)

	store := repository.NewMemory()
	ws := &config.WebSocket{}
	game := NewGameHandler(log, store, ws, rand.New(rand.NewPCG(1, 2)))
	auth := NewAuth(log, store, cookies)
	highscores := NewHighscores(log, store)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", game.NewGame)
	mux.HandleFunc("GET /game/{id}", game.Fetch)
	mux.HandleFunc("GET /game/{id}/pieces", game.Pieces)
	mux.HandleFunc("POST /game/{id}/select", game.Select)
	mux.HandleFunc("POST /game/{id}/rotate", game.Rotate)
	mux.HandleFunc("POST /game/{id}/place", game.Place)
	mux.HandleFunc("POST /game/{id}/check", game.Check)
	mux.HandleFunc("POST /game/{id}/solve", game.Solve)
	mux.HandleFunc("POST /game/{id}/reset", game.Reset)
	mux.HandleFunc("GET /game/{id}/connect", game.ConnectWS)
	mux.HandleFunc("GET /highscores", highscores.List)
	mux.HandleFunc("POST /register", auth.Register)
	mux.HandleFunc("POST /login", auth.Login)
	mux.HandleFunc("POST /logout", auth.Logout)
	mux.HandleFunc("GET /status", auth.Status)

	srv := httptest.NewServer(middleware.Auth(log, cookies)(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, store: store, client: &http.Client{Jar: jar}}
}

func (e *testEnv) do(method, path string, form url.Values) (int, []byte) {
	e.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(e.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	res, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer res.Body.Close()
	payload, err := io.ReadAll(res.Body)
	require.NoError(e.t, err)
	return res.StatusCode, payload
}

func (e *testEnv) session(method, path string) *GameSessionDTO {
	e.t.Helper()
	status, payload := e.do(method, path, nil)
	require.Equal(e.t, http.StatusOK, status, string(payload))
	var dto GameSessionDTO
	require.NoError(e.t, json.Unmarshal(payload, &dto))
	return &dto
}

func uniformPieces(s puzzle.Symbol) []puzzle.Piece {
	pieces := make([]puzzle.Piece, puzzle.PieceCount)
	for i := range pieces {
		pieces[i] = puzzle.Piece{ID: i, Edges: puzzle.Edges{s, s, s, s}}
	}
	return pieces
}

// seed stores a game over pieces and returns its id.
func (e *testEnv) seed(pieces []puzzle.Piece) string {
	e.t.Helper()
	game := puzzle.NewGame(rand.New(rand.NewPCG(3, 4)))
	game.Pieces = pieces
	session, err := e.store.CreateGameSession(
		context.Background(), game, repository.CreateGameSessionParams{},
	)
	require.NoError(e.t, err)
	return session.GameSessionId.String()
}

func TestNewGame(t *testing.T) {
	env := newTestEnv(t)

	dto := env.session(http.MethodPost, "/game")

	assert.NotEqual(t, uuid.Nil, dto.GameSessionId)
	assert.Len(t, dto.Pieces, puzzle.PieceCount)
	assert.Len(t, dto.AvailablePieces, puzzle.PieceCount)
	assert.Equal(t, puzzle.EmptyBoard(), dto.Board)
	assert.Nil(t, dto.SelectedPieceID)
	assert.Nil(t, dto.EndedAt)
	assert.False(t, dto.Solved)
	assert.Equal(t, "Select a piece and place it on the board", dto.Message)

	fetched := env.session(http.MethodGet, "/game/"+dto.GameSessionId.String())
	assert.Equal(t, dto.Pieces, fetched.Pieces)
}

func TestFetchErrors(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(http.MethodGet, "/game/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, payload := env.do(http.MethodGet, "/game/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"game session not found"}`, string(payload))
}

func TestMoves(t *testing.T) {
	env := newTestEnv(t)
	pieces := uniformPieces(puzzle.Plus)
	pieces[2].Edges = puzzle.Edges{puzzle.Plus, puzzle.Minus, puzzle.Times, puzzle.Divide}
	id := env.seed(pieces)
	base := "/game/" + id

	dto := env.session(http.MethodPost, base+"/select?piece=2")
	require.NotNil(t, dto.SelectedPieceID)
	assert.Equal(t, 2, *dto.SelectedPieceID)

	dto = env.session(http.MethodPost, base+"/rotate?direction=cw")
	assert.Equal(t, 90, dto.Pieces[2].Rotation)
	assert.Equal(t, puzzle.Edges{puzzle.Divide, puzzle.Plus, puzzle.Minus, puzzle.Times}, dto.Pieces[2].Edges)

	env.session(http.MethodPost, base+"/select?piece=0")
	dto = env.session(http.MethodPost, base+"/place?position=4")
	assert.Equal(t, 0, dto.Board[4])
	assert.Equal(t, "Piece placed! Select another piece.", dto.Message)
	assert.Len(t, dto.AvailablePieces, puzzle.PieceCount-1)

	// rejected commands are answered with the game message, not an error
	dto = env.session(http.MethodPost, base+"/place?position=5")
	assert.Equal(t, "Select a piece first", dto.Message)

	status, payload := env.do(http.MethodGet, base+"/pieces", nil)
	require.Equal(t, http.StatusOK, status)
	var available []puzzle.Piece
	require.NoError(t, json.Unmarshal(payload, &available))
	assert.Len(t, available, puzzle.PieceCount-1)
	assert.Equal(t, 1, available[0].ID)
}

func TestMoveParams(t *testing.T) {
	env := newTestEnv(t)
	base := "/game/" + env.seed(uniformPieces(puzzle.Plus))

	tests := []struct {
		name string
		path string
	}{
		{"missing piece", "/select"},
		{"non-numeric piece", "/select?piece=x"},
		{"bad direction", "/rotate?direction=sideways"},
		{"missing position", "/place"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(http.MethodPost, base+tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestCheckEndsGame(t *testing.T) {
	env := newTestEnv(t)
	base := "/game/" + env.seed(uniformPieces(puzzle.Times))

	for i := range puzzle.Cells {
		env.session(http.MethodPost, base+"/select?piece="+strconv.Itoa(i))
		env.session(http.MethodPost, base+"/place?position="+strconv.Itoa(i))
	}

	dto := env.session(http.MethodPost, base+"/check")
	require.NotNil(t, dto.CheckResult)
	assert.Equal(t, puzzle.Success, dto.CheckResult.Status)
	require.NotNil(t, dto.CheckText)
	assert.Contains(t, *dto.CheckText, "Success!")
	assert.True(t, dto.Solved)
	require.NotNil(t, dto.EndedAt)
	endedAt := *dto.EndedAt

	// checking again keeps the first finish time
	dto = env.session(http.MethodPost, base+"/check")
	assert.Equal(t, endedAt, *dto.EndedAt)

	status, payload := env.do(http.MethodPost, base+"/solve", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(payload), "game is over")

	var highscores []repository.Highscore
	status, payload = env.do(http.MethodGet, "/highscores", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(payload, &highscores))
	require.Len(t, highscores, 1)
	assert.Nil(t, highscores[0].Username)

	dto = env.session(http.MethodPost, base+"/reset")
	assert.False(t, dto.Solved)
	assert.Nil(t, dto.EndedAt)
	assert.Nil(t, dto.CheckResult)
	assert.Equal(t, puzzle.EmptyBoard(), dto.Board)
	assert.Len(t, dto.AvailablePieces, puzzle.PieceCount)
}

func TestSolveIsNotAHighscore(t *testing.T) {
	env := newTestEnv(t)
	base := "/game/" + env.seed(uniformPieces(puzzle.Minus))

	dto := env.session(http.MethodPost, base+"/solve")

	assert.True(t, dto.UsedSolver)
	assert.True(t, dto.Solved)
	assert.NotNil(t, dto.EndedAt)
	assert.Equal(t, "Puzzle solved automatically!", dto.Message)
	assert.Empty(t, dto.AvailablePieces)

	_, payload := env.do(http.MethodGet, "/highscores", nil)
	assert.JSONEq(t, `[]`, string(payload))
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	creds := url.Values{"username": {"alice"}, "password": {"hunter22"}}

	status, payload := env.do(http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"logged_in":false}`, string(payload))

	status, _ = env.do(http.MethodPost, "/register", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, payload = env.do(http.MethodPost, "/register", creds)
	require.Equal(t, http.StatusOK, status, string(payload))

	status, payload = env.do(http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, status)
	var s Status
	require.NoError(t, json.Unmarshal(payload, &s))
	assert.True(t, s.LoggedIn)
	require.NotNil(t, s.Player)
	assert.Equal(t, "alice", s.Player.Username)

	// owned games show up under the player's name
	game := env.session(http.MethodPost, "/game")
	session, err := env.store.FetchGameSession(context.Background(), game.GameSessionId)
	require.NoError(t, err)
	require.NotNil(t, session.PlayerId)
	assert.Equal(t, s.Player.PlayerId, *session.PlayerId)

	status, _ = env.do(http.MethodPost, "/register", creds)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, payload = env.do(http.MethodGet, "/status", nil)
	assert.JSONEq(t, `{"logged_in":false}`, string(payload))

	status, _ = env.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"x"}})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(http.MethodPost, "/login", creds)
	assert.Equal(t, http.StatusOK, status)
	_, payload = env.do(http.MethodGet, "/status", nil)
	assert.Contains(t, string(payload), `"logged_in":true`)
}
