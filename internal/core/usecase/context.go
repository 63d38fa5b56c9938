package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/core/ports"
)

const (
	contextSeparator   = "\n\n---\n\n"
	contextCandidates  = 5
	minUsefulRemainder = 200
	snippetLength      = 200
	ellipsis           = "..."
)

// Mode → category filter. Policy mode searches all categories; so do
// unrecognized modes.
var modeFilters = map[domain.Mode]domain.SearchFilter{
	domain.ModePolicy:   {},
	domain.ModeBenefits: {Category: domain.CategoryBenefits},
	domain.ModePayroll:  {Category: domain.CategoryPayroll},
}

// ContextAssembler turns ranked search results into a bounded grounding
// string plus citation records.
type ContextAssembler struct {
	retriever ports.Retriever
}

func NewContextAssembler(retriever ports.Retriever) *ContextAssembler {
	return &ContextAssembler{retriever: retriever}
}

func filterForMode(mode domain.Mode) domain.SearchFilter {
	if filter, ok := modeFilters[mode]; ok {
		return filter
	}
	return domain.SearchFilter{}
}

// ContextForQuestion greedily accumulates results in ranked order until
// the character budget is spent. The returned context never exceeds
// maxContextLength by more than the ellipsis marker.
func (a *ContextAssembler) ContextForQuestion(ctx context.Context, question string, mode domain.Mode, maxContextLength int) (string, []domain.Source) {
	results := a.retriever.Search(ctx, question, contextCandidates, filterForMode(mode))
	if len(results) == 0 {
		return "", nil
	}

	var builder strings.Builder
	var sources []domain.Source

	for _, result := range results {
		part := fmt.Sprintf("[%s]\n%s", result.Section, result.Content)

		needed := len(part)
		if builder.Len() > 0 {
			needed += len(contextSeparator)
		}

		if builder.Len()+needed <= maxContextLength {
			if builder.Len() > 0 {
				builder.WriteString(contextSeparator)
			}
			builder.WriteString(part)
			sources = append(sources, sourceRecord(result, result.Content))
			continue
		}

		remaining := maxContextLength - builder.Len()
		if builder.Len() > 0 {
			remaining -= len(contextSeparator)
			if remaining <= minUsefulRemainder {
				break
			}
		} else if remaining <= 0 {
			break
		}

		truncated := truncateRunes(part, remaining) + ellipsis
		if builder.Len() > 0 {
			builder.WriteString(contextSeparator)
		}
		builder.WriteString(truncated)
		sources = append(sources, sourceRecord(result, truncatedContent(result, truncated)))
		break
	}

	return builder.String(), sources
}

func sourceRecord(result domain.SearchResult, includedContent string) domain.Source {
	return domain.Source{
		Title:      result.Section,
		Snippet:    snippet(includedContent),
		Category:   result.Category,
		Similarity: result.Similarity,
	}
}

// truncatedContent recovers the content portion of a truncated part by
// stripping the "[section]\n" prefix it was formatted with.
func truncatedContent(result domain.SearchResult, truncatedPart string) string {
	prefix := fmt.Sprintf("[%s]\n", result.Section)
	return strings.TrimPrefix(truncatedPart, prefix)
}

func snippet(content string) string {
	if len(content) <= snippetLength {
		return content
	}
	return truncateRunes(content, snippetLength) + ellipsis
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
