package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

// Store is satisfied by both [repository.Queries] and [repository.Memory].
type Store interface {
	CreateGameSession(ctx context.Context, game *puzzle.Game, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId uuid.UUID) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId uuid.UUID, params repository.UpdateGameSessionParams) (*repository.GameSession, error)
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

func SendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	sendStatusJSONOrLog(w, log, http.StatusOK, v)
}

func sendStatusJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	if err := SendJSON(w, status, v); err != nil {
		log.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

func sendErrorOrLog(w http.ResponseWriter, log logrus.FieldLogger, status int, err error) {
	sendStatusJSONOrLog(w, log, status, wrapError(err))
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
