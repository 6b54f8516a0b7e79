package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/analyzer"
	"recruit-backend/internal/candidates"
	"recruit-backend/internal/emotion"
	"recruit-backend/internal/export"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/llm/gemini"
	openai "recruit-backend/internal/llm/openai"
	"recruit-backend/internal/queue"
	"recruit-backend/internal/requirements"
	"recruit-backend/internal/services/health"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/server"
	"recruit-backend/internal/shared/storage/db"
	"recruit-backend/internal/shared/storage/object"
	localstore "recruit-backend/internal/shared/storage/object/local"
	s3store "recruit-backend/internal/shared/storage/object/s3"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/technology"
)

// App holds shared dependencies for the API and the worker.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Queue    queue.Client
	Vocab    *technology.Vocabulary
	Analyzer extraction.TextAnalyzer
	Pipeline *extraction.Pipeline

	CandidatesRepo   candidates.Repo
	RequirementsRepo requirements.Repo
	InterviewsRepo   interviews.Repo

	CandidatesService   *candidates.Service
	RequirementsService *requirements.Service
	InterviewsService   *interviews.Service
	ExportService       *export.Service

	CandidateHandler   *candidates.Handler
	RequirementHandler *requirements.Handler
	InterviewHandler   *interviews.Handler
	ExportHandler      *export.Handler

	closers []io.Closer
}

// Build prepares shared dependencies and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	app := &App{Config: cfg, Vocab: technology.Default()}

	sqlDB, shared, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil && !shared {
		app.closers = append(app.closers, sqlDB)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Queue = queueClient

	provider, err := app.buildProvider(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Analyzer = analyzer.New(provider)
	app.Pipeline = extraction.NewPipeline(app.Analyzer, app.Vocab)

	aggregator, err := buildAggregator(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.buildServices(aggregator)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Health:             health.NewService(pinger, cfg.ObjectStoreType),
		CandidateHandler:   app.CandidateHandler,
		RequirementHandler: app.RequirementHandler,
		InterviewHandler:   app.InterviewHandler,
		ExportHandler:      app.ExportHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"store":        cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"database":     app.DB != nil,
		"queue":        app.Queue != nil,
		"detector":     cfg.EmotionDetectorURL != "",
	})
	return app, nil
}

// Close releases provider clients and the database pool.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
	a.closers = nil
}

// buildDB reports shared when the pool is the Lambda singleton, which
// outlives the App.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, bool, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, shared, err := db.ConnectForRuntime(ctx, cfg.DatabaseURL)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, false, nil
		}
		return nil, false, err
	}
	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			if !shared {
				_ = sqlDB.Close()
			}
			return nil, false, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, shared, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.QueueURL)
}

// buildProvider picks the language model backend. Dev-like environments fall
// back to the placeholder when credentials are missing.
func (a *App) buildProvider(ctx context.Context) (llm.Provider, error) {
	var (
		provider llm.Provider
		err      error
	)
	switch a.Config.LLMProvider {
	case "none":
		return llm.PlaceholderProvider{}, nil
	case "gemini":
		var client *gemini.Client
		client, err = gemini.NewClient(ctx, a.Config.GeminiAPIKey, a.Config.LLMModel)
		if err == nil {
			a.closers = append(a.closers, client)
			provider = client
		}
	default:
		var client *openai.Client
		client, err = openai.NewClient(a.Config.OpenAIAPIKey, a.Config.LLMModel)
		if err == nil {
			provider = client
		}
	}
	if err != nil {
		if a.Config.IsDevLike() {
			log.Printf("bootstrap: llm provider %s unavailable; extraction will report provider errors: %v", a.Config.LLMProvider, err)
			return llm.PlaceholderProvider{}, nil
		}
		return nil, err
	}
	return provider, nil
}

// buildAggregator returns an aggregator without a detector when no detector
// URL is configured; every summary then reports no faces.
func buildAggregator(cfg config.Config) (*emotion.Aggregator, error) {
	if strings.TrimSpace(cfg.EmotionDetectorURL) == "" {
		return emotion.NewAggregator(nil), nil
	}
	client, err := emotion.NewClient(cfg.EmotionDetectorURL, cfg.EmotionTimeout)
	if err != nil {
		return nil, err
	}
	return emotion.NewAggregator(client.Chain()), nil
}

func (a *App) buildServices(aggregator *emotion.Aggregator) {
	if a.DB != nil {
		a.CandidatesRepo = &candidates.PGRepo{DB: a.DB}
		a.RequirementsRepo = &requirements.PGRepo{DB: a.DB}
		a.InterviewsRepo = &interviews.PGRepo{DB: a.DB}
	} else {
		a.CandidatesRepo = candidates.NewMemoryRepo()
		a.RequirementsRepo = requirements.NewMemoryRepo()
		a.InterviewsRepo = interviews.NewMemoryRepo()
	}

	a.CandidatesService = &candidates.Service{
		Store:     a.Store,
		Repo:      a.CandidatesRepo,
		Extractor: a.Pipeline,
	}
	a.RequirementsService = &requirements.Service{
		Store:     a.Store,
		Repo:      a.RequirementsRepo,
		Extractor: a.Pipeline,
		Writer:    a.Analyzer,
	}
	a.InterviewsService = &interviews.Service{
		Store:      a.Store,
		Repo:       a.InterviewsRepo,
		Candidates: a.CandidatesRepo,
		Aggregator: aggregator,
		Extractor:  a.Pipeline,
		Analyzer:   a.Analyzer,
		Vocab:      a.Vocab,
		Queue:      a.Queue,
	}
	a.ExportService = &export.Service{
		Candidates: a.CandidatesRepo,
		Reports:    a.InterviewsRepo,
		Vocab:      a.Vocab,
	}

	a.CandidateHandler = candidates.NewHandler(a.CandidatesService, a.Vocab, a.Config.ShareBaseURL)
	a.RequirementHandler = requirements.NewHandler(a.RequirementsService, a.Vocab)
	a.InterviewHandler = interviews.NewHandler(a.InterviewsService)
	a.ExportHandler = export.NewHandler(a.ExportService)
}
