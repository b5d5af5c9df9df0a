package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paperlog/internal/config"
	"github.com/paperlog/internal/db"
	"github.com/paperlog/internal/handler"
	"github.com/paperlog/internal/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	if err := db.EnsureUser(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	api := handler.NewAPI(db.DB)
	r := router.SetupRouter(cfg, api)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to run server")
	}
}
