package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/bot"
	"github.com/JelacicBan/OlujaBot/internal/config"
	"github.com/JelacicBan/OlujaBot/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msgf("Could not load configuration: %s", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Msgf("Could not open database: %s", err)
	}
	defer db.Close()

	olujaBot, err := bot.New(cfg, db)
	if err != nil {
		log.Fatal().Msgf("Could not create discord bot: %s", err)
	}

	if err := olujaBot.Run(); err != nil {
		log.Fatal().Msgf("Bot stopped with error: %s", err)
	}
}
