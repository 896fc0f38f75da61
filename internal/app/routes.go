package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/handlers"
)

// lockedSource lets concurrent requests share one generator.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func createRand() *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	)})
}

func (a *App) basePath() string {
	return strings.TrimSuffix(config.BasePath(), "/")
}

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(a.log, a.store, a.ws, createRand())
	auth := handlers.NewAuth(a.log, a.store, a.cookies)
	highscores := handlers.NewHighscores(a.log, a.store)

	prefix := a.basePath()

	a.router.HandleFunc("POST "+prefix+"/game", game.NewGame)
	a.router.HandleFunc("GET "+prefix+"/game/{id}", game.Fetch)
	a.router.HandleFunc("GET "+prefix+"/game/{id}/pieces", game.Pieces)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/select", game.Select)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/rotate", game.Rotate)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/place", game.Place)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/check", game.Check)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/solve", game.Solve)
	a.router.HandleFunc("POST "+prefix+"/game/{id}/reset", game.Reset)
	a.router.HandleFunc("GET "+prefix+"/game/{id}/connect", game.ConnectWS)

	a.router.HandleFunc("GET "+prefix+"/highscores", highscores.List)

	a.router.HandleFunc("POST "+prefix+"/register", auth.Register)
	a.router.HandleFunc("POST "+prefix+"/login", auth.Login)
	a.router.HandleFunc("POST "+prefix+"/logout", auth.Logout)
	a.router.HandleFunc("GET "+prefix+"/status", auth.Status)

	a.router.HandleFunc("GET "+prefix+"/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
