package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/edgematch-server/internal/puzzle"
)

type GameSession struct {
	GameSessionId uuid.UUID  `db:"game_session_id"`
	PlayerId      *int64     `db:"player_id"`
	Solved        bool       `db:"solved"`
	UsedSolver    bool       `db:"used_solver"`
	StartedAt     time.Time  `db:"started_at"`
	EndedAt       *time.Time `db:"ended_at"`
	State         []byte     `db:"state"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

const gameSessionColumns = `game_session_id, player_id, solved, used_solver,
	started_at, ended_at, state, created_at, updated_at`

type CreateGameSessionParams struct {
	PlayerId *int64
}

func (q Queries) CreateGameSession(
	ctx context.Context, game *puzzle.Game, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := game.Bytes()
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"game_session_id": uuid.New(),
		"player_id":       params.PlayerId,
		"solved":          game.Solved(),
		"used_solver":     game.UsedSolver,
		"state":           state,
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			game_session_id, player_id, solved, used_solver, state
		)
		VALUES (
			@game_session_id, @player_id, @solved, @used_solver, @state
		)
		RETURNING `+gameSessionColumns,
		args,
	)
	session, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
	return session, translate(err)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId uuid.UUID) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT "+gameSessionColumns+" FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, translate(err)
}

type UpdateGameSessionParams struct {
	Solved       *bool
	UsedSolver   *bool
	StartedAt    *time.Time
	EndedAt      *time.Time
	ClearEndedAt bool
	State        *[]byte
}

func (p UpdateGameSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := make([]string, 0)
	args := pgx.NamedArgs{}

	if p.Solved != nil {
		parts = append(parts, "solved = @solved")
		args["solved"] = *p.Solved
	}
	if p.UsedSolver != nil {
		parts = append(parts, "used_solver = @used_solver")
		args["used_solver"] = *p.UsedSolver
	}
	if p.StartedAt != nil {
		parts = append(parts, "started_at = @started_at")
		args["started_at"] = *p.StartedAt
	}
	if p.ClearEndedAt {
		parts = append(parts, "ended_at = NULL")
	} else if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId uuid.UUID, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	if setClause == "" {
		return q.FetchGameSession(ctx, gameSessionId)
	}
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+
			" WHERE game_session_id = @game_session_id RETURNING "+gameSessionColumns,
		args,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, translate(err)
}
