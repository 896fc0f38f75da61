package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword() (string, error) {
	password, ok := lookup("POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := lookup("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func NewDatabase() (*Database, error) {
	username, ok := lookup("POSTGRES_USER")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_USER set")
	}

	password, err := loadPassword()
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	host, ok := lookup("POSTGRES_HOST")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_HOST set")
	}

	port := 5432
	if portStr, ok := lookup("POSTGRES_PORT"); ok {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("unable to convert port to int: %w", err)
		}
	}

	dbName, ok := lookup("POSTGRES_DB")
	if !ok {
		return nil, fmt.Errorf("no POSTGRES_DB set")
	}

	sslMode, ok := lookup("POSTGRES_SSLMODE")
	if !ok {
		sslMode = "disable"
	}

	config := &Database{
		Username: username,
		Password: password,
		Host:     host,
		Port:     uint16(port),
		DBName:   dbName,
		SSLMode:  sslMode,
	}

	return config, nil
}

func (c Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// DatabaseConfigured reports whether either DATABASE_URL or the POSTGRES_*
// variables are present.
func DatabaseConfigured() bool {
	if _, ok := lookup("DATABASE_URL"); ok {
		return true
	}
	_, ok := lookup("POSTGRES_HOST")
	return ok
}

func DbURL() (string, error) {
	dbURL, ok := lookup("DATABASE_URL")
	if ok {
		return dbURL, nil
	}

	cfg, err := NewDatabase()
	if err == nil {
		return cfg.URL(), nil
	}

	return "", fmt.Errorf("no DATABASE_URL set; %w", err)
}

func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	return pgxpool.ParseConfig(dbURL)
}
