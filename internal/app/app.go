package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/database"
	"github.com/vancomm/edgematch-server/internal/handlers"
	"github.com/vancomm/edgematch-server/internal/middleware"
	"github.com/vancomm/edgematch-server/internal/repository"
)

type App struct {
	log        *logrus.Logger
	router     *http.ServeMux
	store      handlers.Store
	cookies    *config.Cookies
	ws         *config.WebSocket
	migrations fs.FS
}

func New(log *logrus.Logger, migrations fs.FS) *App {
	return &App{
		log:        log,
		router:     http.NewServeMux(),
		migrations: migrations,
	}
}

// openStore connects to Postgres when it is configured. Development servers
// without a database fall back to an in-memory store.
func (a *App) openStore(ctx context.Context) (handlers.Store, func(), error) {
	if config.DatabaseConfigured() {
		pool, migrator, err := database.ConnectAndMigrate(ctx, a.migrations)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to db: %w", err)
		}
		version, dirty, _ := migrator.Version()
		a.log.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database ready")
		return repository.New(pool), pool.Close, nil
	}
	if config.Development() {
		a.log.Warn("no database configured, game sessions are kept in memory")
		return repository.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("no database configured")
}

func (a *App) setupAuth() error {
	j, err := config.NewJWT()
	if err != nil {
		if !config.Development() {
			return err
		}
		a.log.WithError(err).Warn("signing sessions with a throwaway key")
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return fmt.Errorf("unable to generate jwt key: %w", err)
		}
		j = config.NewJWTWithKeys(key, &key.PublicKey, 24*time.Hour)
	}

	cookies, err := config.NewCookies(j)
	if err != nil {
		if !config.Development() {
			return err
		}
		cookies = config.NewCookiesWith("", false, http.SameSiteLaxMode, j)
	}
	a.cookies = cookies
	return nil
}

func (a *App) Start(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	a.store = store

	if err := a.setupAuth(); err != nil {
		return err
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	a.loadRoutes()

	var origins []string
	if !config.Development() {
		origins = config.CorsOrigins()
	}

	server := &http.Server{
		Addr: config.Port(),
		Handler: middleware.Wrap(
			a.router,
			middleware.Auth(a.log, a.cookies),
			middleware.Cors(origins),
			middleware.Logging(a.log),
		),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", server.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), config.ShutdownTimeout(),
		)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
