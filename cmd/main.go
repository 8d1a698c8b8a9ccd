package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/treasurehunt-backend/api"
	"github.com/saeidalz13/treasurehunt-backend/db"
	"github.com/saeidalz13/treasurehunt-backend/db/sqlc"
	"github.com/saeidalz13/treasurehunt-backend/internal/config"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Stage == config.StageDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	// Analytics are optional; without a database the server
	// still plays games.
	var querier sqlc.Querier
	if cfg.DatabaseURL != "" {
		querier = sqlc.New(db.MustConnectToDb(cfg.DatabaseURL, cfg.MigrationDir))
	} else {
		log.Warn().Msg("DATABASE_URL not set; analytics disabled")
	}

	tsm := mc.NewTreasureSessionManager()
	go tsm.CleanupPeriodically()

	tgm := mt.NewTreasureGameManager(cfg.TreasureCount)

	rp := api.NewRequestProcessor(tsm, tgm, querier)
	server := api.NewServer(rp, api.WithPort(cfg.Port), api.WithStage(cfg.Stage))

	log.Info().Str("addr", server.Addr()).Str("stage", cfg.Stage).Msg("listening")
	log.Fatal().Err(server.Start()).Msg("server stopped")
}
