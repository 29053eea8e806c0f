package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spediak/spediak-backend/internal/config"
	"github.com/spediak/spediak-backend/internal/core"
	db "github.com/spediak/spediak-backend/internal/core/database"
	ingestor "github.com/spediak/spediak-backend/internal/core/ingestion_engine"
	"github.com/spediak/spediak-backend/internal/core/llm"
	objectclient "github.com/spediak/spediak-backend/internal/core/object-client"
	"github.com/spediak/spediak-backend/internal/generation"
	"github.com/spediak/spediak-backend/internal/knowledge"
	"github.com/spediak/spediak-backend/internal/lease"
	"github.com/spediak/spediak-backend/internal/sop"
	"github.com/spediak/spediak-backend/internal/tasks"
	"github.com/spediak/spediak-backend/internal/usage"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	SopExtractor ingestor.Ingestor
	KnIngestor   ingestor.Ingestor
	Runner       *tasks.Runner
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	documentExtractor := ingestor.NewDocconvExtractor(false)

	ingCfg := &ingestor.IngestConfig{
		TargetTokens:  100,
		OverlapTokens: 5,
		BatchSize:     16,
		EmbedDim:      cfg.EmbedDim,
	}

	sopExtractor := ingestor.NewSopExtractor(dbClient, objClient, documentExtractor)
	knIngestor := ingestor.NewKnowledgeIngestor(dbClient, objClient, geminiEmbedder, documentExtractor, ingCfg)
	sopExtractor.Start(ctx, 2)
	knIngestor.Start(ctx, 2)

	runner := tasks.NewRunner(256)
	runner.Start(ctx, 2)

	resolver := sop.NewResolver(dbClient, cfg.SopCharBudget)
	lookup := knowledge.NewLookup(dbClient, geminiEmbedder, time.Duration(cfg.KnowledgeTimeoutMs)*time.Millisecond)
	gate := usage.NewGate(dbClient, runner)
	leases := lease.NewManager(dbClient, time.Minute)
	genSvc := generation.NewService(dbClient, llmProvider, resolver, lookup, gate)

	server := NewServer(cfg, dbClient, objClient, sopExtractor, knIngestor, resolver, gate, leases, genSvc)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		SopExtractor: sopExtractor,
		KnIngestor:   knIngestor,
		Runner:       runner,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
