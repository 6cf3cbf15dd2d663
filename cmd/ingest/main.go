package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"memoir-rag/internal/chromemdb"
	"memoir-rag/internal/chunker"
	"memoir-rag/internal/config"
	"memoir-rag/internal/embedding"
	"memoir-rag/internal/helper"
	"memoir-rag/internal/index"
	"memoir-rag/internal/models"
	"memoir-rag/internal/parser"
	"memoir-rag/internal/pgstore"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the memoir document")
	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Print segments, do not embed or save")
	export := flag.Bool("export", false, "Export the collection after ingestion (chromem only)")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Please provide the memoir document using the -file flag")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	text, err := parser.ExtractText(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msgf("Error reading document: %s", *filePath)
	}

	segments, err := chunker.New(&cfg.RAG).Split(text)
	if err != nil {
		log.Fatal().Err(err).Msg("Error chunking document")
	}
	log.Info().Int("segments", len(segments)).Msg("Chunked document")

	if *dryRun {
		helper.PrettyPrint(segments)
		return
	}

	ctx := context.Background()

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	records, err := embedding.EmbedSegments(ctx, embedder, segments)
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}

	log.Info().Int("records", len(records)).Str("backend", cfg.Store.Backend).Msg("Rebuilding index")

	switch cfg.Store.Backend {
	case "chromem":
		store, err := chromemdb.NewStore(cfg.Store.Path, cfg.Store.Collection, false, cfg.Store.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening vector database")
		}
		replace(ctx, store, records)
		if *export {
			if err := store.Export(ctx); err != nil {
				log.Fatal().Err(err).Msg("Error exporting collection")
			}
		}
	case "pgvector":
		store, err := pgstore.NewStore(&cfg.Store)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		defer store.Close()
		replace(ctx, store, records)
	default:
		log.Fatal().Msgf("Unknown store backend: %s", cfg.Store.Backend)
	}

	log.Info().Msg("Ingestion complete, index ready for querying")
}

func replace(ctx context.Context, store index.Index, records []models.EmbeddingRecord) {
	if err := store.Replace(ctx, records); err != nil {
		log.Fatal().Err(err).Msg("Error storing records")
	}
}
