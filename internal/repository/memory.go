package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/edgematch-server/internal/puzzle"
)

// Memory keeps sessions and players in process memory. It backs development
// servers without a database and handler tests. Contents are lost on restart.
type Memory struct {
	mu           sync.RWMutex
	sessions     map[uuid.UUID]GameSession
	players      map[string]Player
	lastPlayerId int64
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[uuid.UUID]GameSession),
		players:  make(map[string]Player),
	}
}

func (s GameSession) clone() *GameSession {
	s.State = slices.Clone(s.State)
	return &s
}

func (m *Memory) CreateGameSession(
	ctx context.Context, game *puzzle.Game, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := game.Bytes()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := GameSession{
		GameSessionId: uuid.New(),
		PlayerId:      params.PlayerId,
		Solved:        game.Solved(),
		UsedSolver:    game.UsedSolver,
		StartedAt:     now,
		State:         state,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.GameSessionId] = session
	return session.clone(), nil
}

func (m *Memory) FetchGameSession(ctx context.Context, gameSessionId uuid.UUID) (*GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	return session.clone(), nil
}

func (m *Memory) UpdateGameSession(
	ctx context.Context, gameSessionId uuid.UUID, params UpdateGameSessionParams,
) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}

	if params.Solved != nil {
		session.Solved = *params.Solved
	}
	if params.UsedSolver != nil {
		session.UsedSolver = *params.UsedSolver
	}
	if params.StartedAt != nil {
		session.StartedAt = *params.StartedAt
	}
	if params.ClearEndedAt {
		session.EndedAt = nil
	} else if params.EndedAt != nil {
		endedAt := *params.EndedAt
		session.EndedAt = &endedAt
	}
	if params.State != nil {
		session.State = slices.Clone(*params.State)
	}
	session.UpdatedAt = time.Now().UTC()

	m.sessions[gameSessionId] = session
	return session.clone(), nil
}

func (m *Memory) CreatePlayer(ctx context.Context, params CreatePlayerParams) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[params.Username]; ok {
		return nil, ErrUsernameTaken
	}
	m.lastPlayerId++
	now := time.Now().UTC()
	player := Player{
		PlayerId:     m.lastPlayerId,
		Username:     params.Username,
		PasswordHash: slices.Clone(params.PasswordHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.players[player.Username] = player
	return &player, nil
}

func (m *Memory) FetchPlayer(ctx context.Context, username string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	player, ok := m.players[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &player, nil
}

func (m *Memory) GetHighscores(ctx context.Context, filter HighscoreFilter) ([]Highscore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	usernames := make(map[int64]string, len(m.players))
	for _, p := range m.players {
		usernames[p.PlayerId] = p.Username
	}

	highscores := make([]Highscore, 0)
	for _, s := range m.sessions {
		if !s.Solved || s.UsedSolver || s.EndedAt == nil {
			continue
		}
		var username *string
		if s.PlayerId != nil {
			if name, ok := usernames[*s.PlayerId]; ok {
				username = &name
			}
		}
		if filter.Username != nil && (username == nil || *username != *filter.Username) {
			continue
		}
		highscores = append(highscores, Highscore{
			GameSessionId: s.GameSessionId,
			Username:      username,
			PlaytimeMs:    float64(s.EndedAt.Sub(s.StartedAt).Milliseconds()),
		})
	}

	slices.SortFunc(highscores, func(a, b Highscore) int {
		switch {
		case a.PlaytimeMs < b.PlaytimeMs:
			return -1
		case a.PlaytimeMs > b.PlaytimeMs:
			return 1
		}
		return 0
	})
	if filter.Limit > 0 && len(highscores) > filter.Limit {
		highscores = highscores[:filter.Limit]
	}
	return highscores, nil
}
