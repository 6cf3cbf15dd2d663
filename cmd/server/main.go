package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"memoir-rag/internal/config"
	"memoir-rag/internal/server"
	"memoir-rag/internal/tts"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	flag.Parse()

	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup failure is not fatal: the service keeps running and rejects
	// ask requests with 503 until the process is restarted.
	svc, err := server.NewServiceContext(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Startup initialization failed, serving in degraded mode")
	}

	speaker := tts.NewClient(&cfg.TTS)

	if err := server.Run(ctx, cfg, svc, speaker); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
