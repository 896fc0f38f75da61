package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/edgematch-server/internal/repository"
)

type Highscores struct {
	log   *logrus.Logger
	store Store
}

func NewHighscores(log *logrus.Logger, store Store) *Highscores {
	return &Highscores{log: log, store: store}
}

const defaultHighscoresLimit = 50

func (h Highscores) List(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeQuery[HighscoresDTO](r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}
	if dto.Limit <= 0 {
		dto.Limit = defaultHighscoresLimit
	}

	highscores, err := h.store.GetHighscores(r.Context(), repository.HighscoreFilter{
		Username: dto.Username,
		Limit:    dto.Limit,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to fetch highscores")
		return
	}

	sendJSONOrLog(w, h.log, highscores)
}
