package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	defaultPort         = 8000
	defaultMigrationDir = "file://db/migration"
	defaultServerURL    = "http://127.0.0.1:8000"
	defaultPlayerName   = "Player"
)

type Config struct {
	Stage         string
	Port          int
	DatabaseURL   string
	LogLevel      zerolog.Level
	TreasureCount int
	MigrationDir  string

	// client side
	ServerURL  string
	PlayerName string
}

// Reads the environment. Outside prod the variables in envFile
// are loaded first; a missing file is not an error.
func Load(envFile string) (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Config{
		Stage:        getEnv("STAGE", StageDev),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		MigrationDir: getEnv("MIGRATION_DIR", defaultMigrationDir),
		ServerURL:    getEnv("SERVER_URL", defaultServerURL),
		PlayerName:   getEnv("PLAYER_NAME", defaultPlayerName),
	}

	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got: %s", cfg.Stage)
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.TreasureCount, err = getEnvInt("TREASURE_COUNT", 0); err != nil {
		return Config{}, err
	}

	cfg.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", zerolog.InfoLevel.String()))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got: %q", key, v)
	}
	return n, nil
}
