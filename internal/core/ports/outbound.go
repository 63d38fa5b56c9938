package ports

import (
	"context"
	"time"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

// CorpusLoader enumerates the document corpus and produces chunks.
// Individual file failures are logged and skipped, never returned.
type CorpusLoader interface {
	LoadChunks(ctx context.Context) ([]domain.DocumentChunk, error)
	CompanyInfo() domain.CompanyInfo
}

// Embedder builds vectors for chunk texts and query text. The same
// embedder must serve both sides; mixing models corrupts ranking.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex persists chunks with their vectors in a named collection
// and serves nearest-neighbour search over it.
type VectorIndex interface {
	Exists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
	// Recreate drops any existing collection and creates a fresh one
	// with cosine distance. The metric is fixed for the collection's
	// lifetime; changing it requires another Recreate.
	Recreate(ctx context.Context, vectorSize int) error
	UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, topK int, filter domain.SearchFilter) ([]domain.IndexHit, error)
}

// AnswerGenerator creates the final user-facing answer from the
// assembled grounding context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, grounding string) (string, error)
}

// BuildJournal records index build lifecycle for operational visibility.
// The retrieval core works without one; implementations may be absent.
type BuildJournal interface {
	RecordBuildStarted(ctx context.Context, build *domain.IndexBuild) error
	RecordBuildFinished(ctx context.Context, buildID string, chunkCount int, buildErr error) error
	LatestBuild(ctx context.Context, collection string) (*domain.IndexBuild, error)
}

// ReindexQueue publishes/consumes index rebuild requests. The handler
// receives the publish time so consumers can measure queue lag; a zero
// time means the message carried no timestamp.
type ReindexQueue interface {
	PublishReindexRequested(ctx context.Context, reason string) error
	SubscribeReindexRequested(ctx context.Context, handler func(ctx context.Context, reason string, requestedAt time.Time) error) error
}
