package handlers

import (
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/vancomm/edgematch-server/internal/puzzle"
	"github.com/vancomm/edgematch-server/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	dec.RegisterConverter(puzzle.Clockwise, func(s string) reflect.Value {
		d, err := puzzle.ParseDirection(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(d)
	})
	return dec
}

func decodeQuery[T any](src url.Values) (T, error) {
	var dto T
	err := decoder.Decode(&dto, src)
	return dto, err
}

type SelectDTO struct {
	Piece int `schema:"piece,required"`
}

type RotateDTO struct {
	Direction puzzle.Direction `schema:"direction,required"`
}

type PlaceDTO struct {
	Position int `schema:"position,required"`
}

type HighscoresDTO struct {
	Username *string `schema:"username"`
	Limit    int     `schema:"limit"`
}

type GameSessionDTO struct {
	GameSessionId uuid.UUID `json:"game_session_id"`
	puzzle.Snapshot
	AvailablePieces []puzzle.Piece `json:"available_pieces"`
	CheckText       *string        `json:"check_text,omitempty"`
	Solved          bool           `json:"solved"`
	StartedAt       int64          `json:"started_at"`
	EndedAt         *int64         `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(session *repository.GameSession, game *puzzle.Game) *GameSessionDTO {
	dto := &GameSessionDTO{
		GameSessionId:   session.GameSessionId,
		Snapshot:        game.State(),
		AvailablePieces: game.AvailablePieces(),
		Solved:          session.Solved,
		StartedAt:       session.StartedAt.UnixMilli(),
		EndedAt:         unixMilli(session.EndedAt),
	}
	if game.CheckResult != nil {
		text := game.CheckResult.String()
		dto.CheckText = &text
	}
	return dto
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
