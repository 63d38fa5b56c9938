package ports

import (
	"context"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

// IndexBuilder is the inbound contract for index construction.
// Initialize reports success as a boolean; it is the only hard failure
// signal the core exposes.
type IndexBuilder interface {
	Initialize(ctx context.Context, forceRebuild bool) bool
}

// Retriever is the inbound contract for similarity search. Search never
// returns an error: failures degrade to an empty result set.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) []domain.SearchResult
	Ready() bool
}

// ContextProvider assembles a bounded grounding context plus citations.
type ContextProvider interface {
	ContextForQuestion(ctx context.Context, question string, mode domain.Mode, maxContextLength int) (string, []domain.Source)
}

// QuestionService is the inbound contract for end-to-end question answering.
type QuestionService interface {
	Ask(ctx context.Context, question string, mode domain.Mode, maxContextLength int) (*domain.Answer, error)
}
