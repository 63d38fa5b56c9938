package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/core/ports"
)

const defaultTopK = 5

type EngineState string

const (
	StateUninitialized EngineState = "uninitialized"
	StateInitializing  EngineState = "initializing"
	StateReady         EngineState = "ready"
	StateFailed        EngineState = "failed"
)

// RetrievalEngine owns the vector index handle and the embedder for its
// lifetime. Search is read-mostly and safe for concurrent callers; a
// rebuild is exclusive and readers during it may observe empty results.
type RetrievalEngine struct {
	corpus     ports.CorpusLoader
	embedder   ports.Embedder
	index      ports.VectorIndex
	journal    ports.BuildJournal
	logger     *slog.Logger
	collection string
	vectorSize int

	buildMu sync.Mutex

	mu            sync.RWMutex
	state         EngineState
	indexedChunks int
}

type EngineConfig struct {
	Collection string
	// VectorSize is used only when the corpus is empty and there are no
	// vectors to size the collection from.
	VectorSize int
}

func NewRetrievalEngine(
	corpus ports.CorpusLoader,
	embedder ports.Embedder,
	index ports.VectorIndex,
	journal ports.BuildJournal,
	logger *slog.Logger,
	cfg EngineConfig,
) *RetrievalEngine {
	if logger == nil {
		logger = slog.Default()
	}
	vectorSize := cfg.VectorSize
	if vectorSize <= 0 {
		vectorSize = 768
	}
	return &RetrievalEngine{
		corpus:     corpus,
		embedder:   embedder,
		index:      index,
		journal:    journal,
		logger:     logger,
		collection: cfg.Collection,
		vectorSize: vectorSize,
		state:      StateUninitialized,
	}
}

func (e *RetrievalEngine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *RetrievalEngine) Ready() bool {
	return e.State() == StateReady
}

// IndexedChunks reports the point count of the collection the engine
// last became ready with. Zero until the first successful Initialize.
func (e *RetrievalEngine) IndexedChunks() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indexedChunks
}

func (e *RetrievalEngine) setState(state EngineState) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

func (e *RetrievalEngine) setReady(chunkCount int) {
	e.mu.Lock()
	e.state = StateReady
	e.indexedChunks = chunkCount
	e.mu.Unlock()
}

// Initialize builds or reuses the collection. It returns false on any
// failure; the caller's only hard failure signal. Only one build runs
// at a time.
func (e *RetrievalEngine) Initialize(ctx context.Context, forceRebuild bool) bool {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	e.setState(StateInitializing)

	if !forceRebuild {
		existing, reused, err := e.tryReuseExisting(ctx)
		if err != nil {
			return e.fail("", "inspect existing collection", err)
		}
		if reused {
			e.setReady(existing)
			return true
		}
	}

	buildID := uuid.NewString()
	e.recordBuildStarted(ctx, buildID)

	chunkCount, err := e.rebuild(ctx)
	if err != nil {
		return e.fail(buildID, "rebuild index", err)
	}

	e.recordBuildFinished(ctx, buildID, chunkCount, nil)
	e.setReady(chunkCount)
	e.logger.Info("index ready",
		slog.String("collection", e.collection),
		slog.Int("chunks", chunkCount),
	)
	return true
}

func (e *RetrievalEngine) tryReuseExisting(ctx context.Context) (int, bool, error) {
	exists, err := e.index.Exists(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("check collection exists: %w", err)
	}
	if !exists {
		return 0, false, nil
	}
	count, err := e.index.Count(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("count collection points: %w", err)
	}
	if count == 0 {
		return 0, false, nil
	}
	e.logger.Info("reusing existing collection",
		slog.String("collection", e.collection),
		slog.Int("points", count),
	)
	return count, true, nil
}

func (e *RetrievalEngine) rebuild(ctx context.Context) (int, error) {
	chunks, err := e.corpus.LoadChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}

	if len(chunks) == 0 {
		e.logger.Warn("corpus produced no chunks, creating empty collection",
			slog.String("collection", e.collection),
		)
		if err := e.index.Recreate(ctx, e.vectorSize); err != nil {
			return 0, fmt.Errorf("recreate empty collection: %w", err)
		}
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed corpus: vectors/chunks mismatch: %d/%d", len(vectors), len(chunks))
	}

	if err := e.index.Recreate(ctx, len(vectors[0])); err != nil {
		return 0, fmt.Errorf("recreate collection: %w", err)
	}
	if err := e.index.UpsertChunks(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}
	return len(chunks), nil
}

func (e *RetrievalEngine) fail(buildID, operation string, err error) bool {
	e.logger.Error("index build failed",
		slog.String("collection", e.collection),
		slog.String("operation", operation),
		slog.Any("error", err),
	)
	if buildID != "" {
		e.recordBuildFinished(context.Background(), buildID, 0, err)
	}
	e.setState(StateFailed)
	return false
}

func (e *RetrievalEngine) recordBuildStarted(ctx context.Context, buildID string) {
	if e.journal == nil {
		return
	}
	build := &domain.IndexBuild{
		ID:         buildID,
		Collection: e.collection,
		Status:     domain.BuildRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := e.journal.RecordBuildStarted(ctx, build); err != nil {
		e.logger.Warn("record build start failed", slog.Any("error", err))
	}
}

func (e *RetrievalEngine) recordBuildFinished(ctx context.Context, buildID string, chunkCount int, buildErr error) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordBuildFinished(ctx, buildID, chunkCount, buildErr); err != nil {
		e.logger.Warn("record build finish failed", slog.Any("error", err))
	}
}

// Search embeds the query and runs nearest-neighbour search. It fails
// soft: any backend error is logged and an empty result set returned.
func (e *RetrievalEngine) Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) []domain.SearchResult {
	if !e.Ready() {
		e.logger.Debug("search skipped, engine not ready", slog.String("state", string(e.State())))
		return nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		e.logger.Error("embed query failed", slog.Any("error", err))
		return nil
	}

	hits, err := e.index.Query(ctx, vector, topK, filter)
	if err != nil {
		e.logger.Error("index query failed", slog.Any("error", err))
		return nil
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, hitToResult(hit))
	}
	return results
}

func hitToResult(hit domain.IndexHit) domain.SearchResult {
	sourceFile := hit.Chunk.SourceFile
	if sourceFile == "" {
		sourceFile = "Unknown"
	}
	category := hit.Chunk.Category
	if category == "" {
		category = domain.CategoryGeneral
	}
	return domain.SearchResult{
		Content:      hit.Chunk.Content,
		SourceFile:   sourceFile,
		Section:      hit.Chunk.Section,
		Category:     category,
		DocTitle:     hit.Chunk.DocTitle,
		SectionTitle: hit.Chunk.SectionTitle,
		Similarity:   round3(1 - hit.Distance),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
