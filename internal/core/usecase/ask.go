package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/core/ports"
)

const (
	defaultMaxContextLength = 2000
	contextExcerptLength    = 1500
)

// AskUseCase answers a question end to end: domain gate, context
// assembly, answer generation, and fallbacks when either retrieval or
// generation is unavailable. The caller always gets an answer payload;
// the only error is an empty question.
type AskUseCase struct {
	contexts  ports.ContextProvider
	generator ports.AnswerGenerator
	company   string
	logger    *slog.Logger
}

func NewAskUseCase(contexts ports.ContextProvider, generator ports.AnswerGenerator, company string, logger *slog.Logger) *AskUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskUseCase{
		contexts:  contexts,
		generator: generator,
		company:   company,
		logger:    logger,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question string, mode domain.Mode, maxContextLength int) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("empty question"))
	}
	if maxContextLength <= 0 {
		maxContextLength = defaultMaxContextLength
	}

	if !IsInDomain(question) {
		return &domain.Answer{
			Text:      refusalMessage(uc.company),
			OODReject: true,
			Company:   uc.company,
		}, nil
	}

	grounding, sources := uc.contexts.ContextForQuestion(ctx, question, mode, maxContextLength)
	if grounding == "" {
		return &domain.Answer{
			Text:    fallbackAnswer(question, mode, uc.company),
			Company: uc.company,
		}, nil
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, grounding)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			uc.logger.Warn("answer generation failed, using context excerpt", slog.Any("error", err))
		}
		text = contextExcerpt(grounding, uc.company)
	}

	return &domain.Answer{
		Text:    text,
		Sources: sources,
		Company: uc.company,
	}, nil
}

// contextExcerpt renders the retrieved context directly when the
// generator cannot produce an answer.
func contextExcerpt(grounding, company string) string {
	excerpt := grounding
	overflow := len(grounding) > contextExcerptLength
	if overflow {
		excerpt = truncateRunes(grounding, contextExcerptLength)
	}
	text := fmt.Sprintf("Based on %s's HR policies:\n\n%s", company, excerpt)
	if overflow {
		text += "\n\nFor more details, please consult the full policy on the HR Portal."
	}
	return text
}
