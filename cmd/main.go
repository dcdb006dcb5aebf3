package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AbdulmalikDS/Farqad/internal/assets"
	"github.com/AbdulmalikDS/Farqad/internal/chunker"
	"github.com/AbdulmalikDS/Farqad/internal/config"
	"github.com/AbdulmalikDS/Farqad/internal/llm"
	"github.com/AbdulmalikDS/Farqad/internal/loader"
	"github.com/AbdulmalikDS/Farqad/internal/models"
	"github.com/AbdulmalikDS/Farqad/internal/nlp"
	"github.com/AbdulmalikDS/Farqad/internal/store"
	"github.com/AbdulmalikDS/Farqad/internal/templates"
	"github.com/AbdulmalikDS/Farqad/internal/vectordb"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	filePath := flag.String("file", "", "document to ingest")
	project := flag.String("project", "default", "project identifier")
	query := flag.String("query", "", "run a similarity search and print the hits")
	ask := flag.String("ask", "", "ask a question grounded in the project's documents")
	chat := flag.String("chat", "", "ask a question without document retrieval")
	reset := flag.Bool("reset", false, "recreate the project's vector collection before indexing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	setupLogging(cfg.Log)

	if err := run(cfg, *filePath, *project, *query, *ask, *chat, *reset); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func run(cfg *config.Config, filePath, project, query, ask, chat string, reset bool) error {
	ctx := context.Background()

	generator, embedder := llm.InitProviders(cfg.LLM)

	vdb, err := vectordb.NewProvider(cfg.VectorDB)
	if err != nil {
		return fmt.Errorf("configuring vector db: %w", err)
	}
	if err := vdb.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to vector db: %w", err)
	}
	defer vdb.Close()

	parser := templates.NewParser(cfg.Templates.PrimaryLanguage, cfg.Templates.DefaultLanguage)
	controller := nlp.NewController(vdb, generator, embedder, parser, nlp.Config{
		SearchLimit:    cfg.RAG.SearchLimit,
		ScoreThreshold: cfg.RAG.ScoreThreshold,
		BatchSize:      cfg.VectorDB.BatchSize,
		EmbedWorkers:   cfg.RAG.EmbedWorkers,
	})

	switch {
	case filePath != "":
		return ingest(ctx, cfg, controller, filePath, project, reset)
	case query != "":
		for _, hit := range controller.Search(ctx, project, query, cfg.RAG.SearchLimit, "", nil) {
			fmt.Printf("%.4f  %s\n", hit.Score, hit.Text)
		}
		return nil
	case ask != "":
		result := controller.Answer(ctx, project, ask, "", nil)
		fmt.Println(result.Answer)
		if result.Value != nil {
			fmt.Printf("extracted value: %v\n", *result.Value)
		}
		return nil
	case chat != "":
		fmt.Println(controller.DirectAnswer(ctx, chat, nil))
		return nil
	default:
		flag.Usage()
		return nil
	}
}

// ingest parses the file, chunks it, records it in Postgres when a DSN is
// configured, and indexes the chunks into the project's collection.
func ingest(ctx context.Context, cfg *config.Config, controller *nlp.Controller,
	filePath, project string, reset bool) error {

	resolver := assets.NewResolver(cfg.Uploads.Dir)
	storedPath, size, err := stageUpload(resolver, filePath, project)
	if err != nil {
		return err
	}

	segments, err := loader.Load(storedPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filePath, err)
	}

	chunks := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).Split(segments)
	log.Info().Str("file", filePath).Int("segments", len(segments)).Int("chunks", len(chunks)).Msg("document chunked")

	if cfg.Database.DSN != "" {
		if err := persistChunks(ctx, cfg, project, filePath, size, chunks); err != nil {
			return err
		}
	} else {
		log.Debug().Msg("no database dsn configured, skipping relational store")
	}

	return controller.Index(ctx, project, chunks, reset)
}

// stageUpload copies the source file into the project's upload directory
// under a collision-free name.
func stageUpload(resolver *assets.Resolver, filePath, project string) (string, int64, error) {
	dir, err := resolver.ProjectPath(project)
	if err != nil {
		return "", 0, err
	}

	src, err := os.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer src.Close()

	storedPath := filepath.Join(dir, assets.StorageName(filePath))
	dst, err := os.Create(storedPath)
	if err != nil {
		return "", 0, fmt.Errorf("staging upload: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return "", 0, fmt.Errorf("staging upload: %w", err)
	}
	return storedPath, size, nil
}

func persistChunks(ctx context.Context, cfg *config.Config, project, filePath string,
	size int64, chunks []models.Chunk) error {

	db, err := store.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	s := store.New(db)
	if err := s.CreateTables(ctx); err != nil {
		return err
	}

	proj, err := s.GetOrCreateProject(ctx, project)
	if err != nil {
		return err
	}

	asset := &models.Asset{
		ProjectID: proj.ID,
		Name:      filepath.Base(filePath),
		Size:      size,
		Type:      filepath.Ext(filePath),
	}
	if err := s.CreateAsset(ctx, asset); err != nil {
		return err
	}

	for i := range chunks {
		chunks[i].ProjectID = proj.ID
		chunks[i].AssetID = asset.ID
	}
	n, err := s.InsertChunks(ctx, chunks)
	if err != nil {
		return err
	}
	log.Info().Int("chunks", n).Int64("asset_id", asset.ID).Msg("chunks persisted")
	return nil
}
