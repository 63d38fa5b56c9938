package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opryamko/hr-assistant/internal/config"
	"github.com/opryamko/hr-assistant/internal/core/ports"
	"github.com/opryamko/hr-assistant/internal/core/usecase"
	"github.com/opryamko/hr-assistant/internal/infrastructure/chunking"
	"github.com/opryamko/hr-assistant/internal/infrastructure/corpus/localfs"
	"github.com/opryamko/hr-assistant/internal/infrastructure/llm/ollama"
	"github.com/opryamko/hr-assistant/internal/infrastructure/queue/nats"
	"github.com/opryamko/hr-assistant/internal/infrastructure/repository/postgres"
	"github.com/opryamko/hr-assistant/internal/infrastructure/resilience"
	"github.com/opryamko/hr-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Engine    *usecase.RetrievalEngine
	Assembler ports.ContextProvider
	AskUC     ports.QuestionService
	Queue     ports.ReindexQueue

	closeFn func()
}

// New wires the full dependency graph. Postgres is optional: when it is
// unreachable, build bookkeeping is skipped and everything else works.
// NATS and the retrieval backends are required.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var journal ports.BuildJournal
	var closeDB func()
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		logger.Warn("postgres unavailable, build bookkeeping disabled", slog.Any("error", err))
	} else {
		repo := postgres.NewBuildJournal(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Warn("postgres schema setup failed, build bookkeeping disabled", slog.Any("error", err))
			_ = db.Close()
		} else {
			journal = repo
			closeDB = func() { _ = db.Close() }
		}
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		if closeDB != nil {
			closeDB()
		}
		return nil, fmt.Errorf("init reindex queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	index := qdrant.NewWithOptions(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
		ResilienceExecutor: executor,
	})

	chunker := chunking.NewChunker()
	corpus := localfs.New(cfg.CorpusPath, chunker, logger)

	engine := usecase.NewRetrievalEngine(corpus, embedder, index, journal, logger, usecase.EngineConfig{
		Collection: cfg.QdrantCollection,
		VectorSize: cfg.EmbeddingDim,
	})
	assembler := usecase.NewContextAssembler(engine)

	company := cfg.CompanyName
	if company == "" {
		company = corpus.CompanyInfo().CompanyName
	}
	askUC := usecase.NewAskUseCase(assembler, generator, company, logger)

	return &App{
		Config: cfg,

		Engine:    engine,
		Assembler: assembler,
		AskUC:     askUC,
		Queue:     queue,

		closeFn: func() {
			queue.Close()
			if closeDB != nil {
				closeDB()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
