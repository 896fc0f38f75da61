package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/edgematch-server/internal/config"
	"github.com/vancomm/edgematch-server/internal/middleware"
	"github.com/vancomm/edgematch-server/internal/repository"
)

type Auth struct {
	log     *logrus.Logger
	store   Store
	cookies *config.Cookies
}

func NewAuth(log *logrus.Logger, store Store, cookies *config.Cookies) *Auth {
	return &Auth{
		log:     log,
		store:   store,
		cookies: cookies,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken      = fmt.Errorf("username taken")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)

const maxPasswordLength = 72 // bcrypt input limit

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		sendJSONOrLog(w, a.log, Status{LoggedIn: false})
		return
	}

	if err := a.cookies.SignAndRefresh(w, claims.PlayerId, claims.Username); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.log.WithError(err).Error("unable to refresh cookies")
		return
	}

	sendJSONOrLog(w, a.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func parseCredentials(r *http.Request) (username, password string, err error) {
	if err = r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	if len(password) > maxPasswordLength {
		return "", "", ErrBadPasswordTooLong
	}
	return username, password, nil
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, err := parseCredentials(r)
	if err != nil {
		sendErrorOrLog(w, a.log, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.log.WithError(err).Error("unable to hash password")
		return
	}

	player, err := a.store.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrUsernameTaken) {
		sendErrorOrLog(w, a.log, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.log.WithError(err).Error("unable to insert player")
		return
	}

	a.signIn(w, player)
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := parseCredentials(r)
	if err != nil {
		sendErrorOrLog(w, a.log, http.StatusBadRequest, err)
		return
	}

	player, err := a.store.FetchPlayer(r.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, a.log, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.log.WithError(err).Error("unable to fetch player")
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password))
	if err != nil {
		a.log.WithField("username", username).Debug("wrong password")
		sendErrorOrLog(w, a.log, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	a.signIn(w, player)
}

func (a Auth) signIn(w http.ResponseWriter, player *repository.Player) {
	if err := a.cookies.SignAndRefresh(w, player.PlayerId, player.Username); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		a.log.WithError(err).Error("unable to sign player in")
		return
	}
	sendJSONOrLog(w, a.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
