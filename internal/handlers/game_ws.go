package handlers

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

type wsCommand string

const (
	wsNoop   wsCommand = "g"
	wsSelect wsCommand = "s"
	wsRotate wsCommand = "r"
	wsPlace  wsCommand = "p"
	wsCheck  wsCommand = "c"
	wsSolve  wsCommand = "v"
	wsReset  wsCommand = "n"
)

var commandNargs = map[wsCommand]int{
	wsNoop:   0,
	wsSelect: 1,
	wsRotate: 1,
	wsPlace:  1,
	wsCheck:  0,
	wsSolve:  0,
	wsReset:  0,
}

func iterBySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var part string
		for found {
			part, s, found = strings.Cut(s, sep)
			if !yield(i, part) {
				return
			}
			i += 1
		}
	}
}

// gameExecutor runs text commands against one session's game.
type gameExecutor struct {
	*puzzle.Game
	ended bool
	reset bool
}

func (game *gameExecutor) execute(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]

	nargs, ok := commandNargs[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", tokens[0])
	}
	if nargs != len(args) {
		return fmt.Errorf("command %q takes %d arguments", cmd, nargs)
	}

	switch cmd {
	case wsSelect, wsRotate, wsPlace, wsSolve:
		if game.ended {
			return ErrGameOver
		}
	}

	switch cmd {
	case wsNoop:
	case wsSelect:
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("piece must be an int")
		}
		game.SelectPiece(id)
	case wsRotate:
		d, err := puzzle.ParseDirection(args[0])
		if err != nil {
			return err
		}
		game.RotatePiece(d)
	case wsPlace:
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("position must be an int")
		}
		game.PlacePiece(pos)
	case wsCheck:
		game.CheckSolution()
		game.ended = game.ended || game.Solved()
	case wsSolve:
		game.SolvePuzzle()
		game.ended = game.Solved()
	case wsReset:
		game.ResetGame()
		game.ended = false
		game.reset = true
	}
	return nil
}

// runFrame executes every line of one text frame. It stops at the first
// failing command; the commands before it still count.
func (game *gameExecutor) runFrame(frame string) error {
	for _, line := range iterBySep(strings.TrimSpace(frame), "\n") {
		if err := game.execute(strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return nil
}

func (g GameHandler) wsRunGameLoop(
	ctx context.Context,
	conn *websocket.Conn,
	session *repository.GameSession,
	game *gameExecutor,
) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		g.log.WithField("frame", string(buf)).Debug("ws >")

		game.reset = false
		cmdErr := game.runFrame(string(buf))

		session, err = g.commit(ctx, session, game.Game, game.reset)
		if err != nil {
			return err
		}

		if cmdErr != nil {
			err = conn.WriteJSON(wrapError(cmdErr))
		} else {
			err = conn.WriteJSON(NewGameSessionDTO(session, game.Game))
		}
		if err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.load(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.log.WithError(err).Error("unable to upgrade")
		return
	}
	defer conn.Close()

	log := g.log.WithField("sessionId", session.GameSessionId)
	log.Debug("established ws connection")

	executor := &gameExecutor{Game: game, ended: session.EndedAt != nil}
	err = g.wsRunGameLoop(r.Context(), conn, session, executor)
	if err != nil && !websocket.IsCloseError(
		err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
	) {
		log.WithError(err).Warn("error in ws loop")
	}
}
