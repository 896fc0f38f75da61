package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/middleware"
	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

var (
	ErrInvalidSessionId = fmt.Errorf("invalid game session id")
	ErrSessionNotFound  = fmt.Errorf("game session not found")
	ErrGameOver         = fmt.Errorf("game is over, reset to play again")
)

type GameHandler struct {
	log   *logrus.Logger
	store Store
	ws    *config.WebSocket
	rnd   *rand.Rand
}

func NewGameHandler(
	log *logrus.Logger,
	store Store,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		log:   log,
		store: store,
		ws:    ws,
		rnd:   rnd,
	}
}

// load fetches and decodes the session named in the path, writing an error
// response when it cannot.
func (g GameHandler) load(
	w http.ResponseWriter, r *http.Request,
) (*repository.GameSession, *puzzle.Game, bool) {
	sessionId, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, ErrInvalidSessionId)
		return nil, nil, false
	}

	session, err := g.store.FetchGameSession(r.Context(), sessionId)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, g.log, http.StatusNotFound, ErrSessionNotFound)
		return nil, nil, false
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to fetch game session")
		return nil, nil, false
	}

	game, err := puzzle.DecodeGame(session.State, g.rnd)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).WithField("sessionId", sessionId).Error("stored game state is invalid")
		return nil, nil, false
	}

	return session, game, true
}

// commit stores game into session. The first successful check ends the
// session; a reset starts the clock over.
func (g GameHandler) commit(
	ctx context.Context, session *repository.GameSession, game *puzzle.Game, reset bool,
) (*repository.GameSession, error) {
	state, err := game.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize game state: %w", err)
	}

	solved := game.Solved()
	params := repository.UpdateGameSessionParams{
		Solved:     &solved,
		UsedSolver: &game.UsedSolver,
		State:      &state,
	}

	now := time.Now().UTC()
	if reset {
		params.StartedAt = &now
		params.ClearEndedAt = true
	}
	if solved && (reset || session.EndedAt == nil) {
		params.EndedAt = &now
		params.ClearEndedAt = false
	}

	updated, err := g.store.UpdateGameSession(ctx, session.GameSessionId, params)
	if err != nil {
		return nil, fmt.Errorf("unable to update game session: %w", err)
	}
	return updated, nil
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	game := puzzle.NewGame(g.rnd)

	var params repository.CreateGameSessionParams
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		params.PlayerId = &claims.PlayerId
	}

	session, err := g.store.CreateGameSession(r.Context(), game, params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to create game session")
		return
	}

	g.log.WithFields(logrus.Fields{
		"sessionId": session.GameSessionId,
		"playerId":  params.PlayerId,
	}).Debug("created game session")

	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.load(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

func (g GameHandler) Pieces(w http.ResponseWriter, r *http.Request) {
	_, game, ok := g.load(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.log, game.AvailablePieces())
}

type moveKind int

const (
	boardMove moveKind = iota // rejected once the game is over
	checkMove
	resetMove
)

// play loads the session, applies move and stores the result.
func (g GameHandler) play(
	w http.ResponseWriter, r *http.Request, kind moveKind, move func(*puzzle.Game),
) {
	session, game, ok := g.load(w, r)
	if !ok {
		return
	}

	if session.EndedAt != nil && kind == boardMove {
		sendErrorOrLog(w, g.log, http.StatusConflict, ErrGameOver)
		return
	}

	move(game)

	session, err := g.commit(r.Context(), session, game, kind == resetMove)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to save move")
		return
	}

	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

func (g GameHandler) Select(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeQuery[SelectDTO](r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	g.play(w, r, boardMove, func(game *puzzle.Game) {
		game.SelectPiece(dto.Piece)
	})
}

func (g GameHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeQuery[RotateDTO](r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	g.play(w, r, boardMove, func(game *puzzle.Game) {
		game.RotatePiece(dto.Direction)
	})
}

func (g GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeQuery[PlaceDTO](r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	g.play(w, r, boardMove, func(game *puzzle.Game) {
		game.PlacePiece(dto.Position)
	})
}

func (g GameHandler) Check(w http.ResponseWriter, r *http.Request) {
	g.play(w, r, checkMove, (*puzzle.Game).CheckSolution)
}

func (g GameHandler) Solve(w http.ResponseWriter, r *http.Request) {
	g.play(w, r, boardMove, func(game *puzzle.Game) {
		start := time.Now()
		game.SolvePuzzle()
		g.log.WithFields(logrus.Fields{
			"solved":     game.UsedSolver,
			"durationMs": time.Since(start).Milliseconds(),
		}).Debug("ran solver")
	})
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g.play(w, r, resetMove, (*puzzle.Game).ResetGame)
}
