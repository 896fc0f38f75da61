package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var v = viper.New()

func init() {
	v.AutomaticEnv()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_SHUTDOWN_TIMEOUT", "15s")
}

// Load reads a .env file from the working directory when there is one, then
// the config file at path if path is not empty. Environment variables win
// over both.
func Load(path string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to load .env: %w", err)
	}
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config %s: %w", path, err)
	}
	return nil
}

func BindFlag(key string, flag *pflag.Flag) error {
	return v.BindPFlag(key, flag)
}

func Set(key string, value any) {
	v.Set(key, value)
}

func lookup(key string) (string, bool) {
	if !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

func Development() bool {
	return v.GetBool("DEVELOPMENT")
}

func BasePath() string {
	return v.GetString("APP_BASE_PATH")
}

func Port() string {
	return v.GetString("APP_PORT")
}

func ShutdownTimeout() time.Duration {
	return v.GetDuration("APP_SHUTDOWN_TIMEOUT")
}

func LogFile() string {
	return v.GetString("LOG_FILE")
}

func SolverLog() bool {
	return v.GetBool("SOLVER_LOG")
}

// CorsOrigins splits the comma separated CORS_ORIGINS list.
func CorsOrigins() []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
