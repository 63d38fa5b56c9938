package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

type fakeRetriever struct {
	results    []domain.SearchResult
	lastTopK   int
	lastFilter domain.SearchFilter
	ready      bool
}

func (f *fakeRetriever) Search(_ context.Context, _ string, topK int, filter domain.SearchFilter) []domain.SearchResult {
	f.lastTopK = topK
	f.lastFilter = filter
	return f.results
}

func (f *fakeRetriever) Ready() bool { return f.ready }

func resultWith(section, content string) domain.SearchResult {
	return domain.SearchResult{
		Content:    content,
		SourceFile: "doc.md",
		Section:    section,
		Category:   domain.CategoryPolicy,
		Similarity: 0.9,
	}
}

func TestContextJoinsResultsWithSeparator(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.SearchResult{
		resultWith("Handbook - Vacation", "Employees receive 20 vacation days per year."),
		resultWith("Handbook - Sick Leave", "Employees receive 10 paid sick days per year."),
	}}
	assembler := NewContextAssembler(retriever)

	text, sources := assembler.ContextForQuestion(context.Background(), "vacation days", domain.ModePolicy, 2000)

	want := "[Handbook - Vacation]\nEmployees receive 20 vacation days per year." +
		contextSeparator +
		"[Handbook - Sick Leave]\nEmployees receive 10 paid sick days per year."
	if text != want {
		t.Fatalf("unexpected context:\n%q", text)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Title != "Handbook - Vacation" {
		t.Fatalf("unexpected source title: %q", sources[0].Title)
	}
	if sources[0].Snippet != "Employees receive 20 vacation days per year." {
		t.Fatalf("short content must be its own snippet, got %q", sources[0].Snippet)
	}
	if retriever.lastTopK != contextCandidates {
		t.Fatalf("expected top_k=%d, got %d", contextCandidates, retriever.lastTopK)
	}
}

func TestContextTruncatesFirstOversizedResult(t *testing.T) {
	long := strings.Repeat("v", 500)
	retriever := &fakeRetriever{results: []domain.SearchResult{
		resultWith("Handbook - Vacation", long),
		resultWith("Handbook - Sick Leave", "Employees receive 10 paid sick days per year."),
	}}
	assembler := NewContextAssembler(retriever)

	text, sources := assembler.ContextForQuestion(context.Background(), "vacation days", domain.ModePolicy, 100)

	if len(text) > 100+len(ellipsis) {
		t.Fatalf("context exceeds budget: %d chars", len(text))
	}
	if !strings.HasSuffix(text, ellipsis) {
		t.Fatalf("truncated context must end with ellipsis, got %q", text)
	}
	if strings.Contains(text, "Sick Leave") {
		t.Fatal("assembly must stop after a truncated result")
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
}

func TestContextStopsWhenRemainderTooSmall(t *testing.T) {
	first := strings.Repeat("a", 250)
	second := strings.Repeat("b", 100)
	retriever := &fakeRetriever{results: []domain.SearchResult{
		resultWith("A", first),
		resultWith("B", second),
	}}
	assembler := NewContextAssembler(retriever)

	// First part is 254 chars; the 39 chars left after the separator are
	// below the usefulness threshold, so the second result is dropped.
	text, sources := assembler.ContextForQuestion(context.Background(), "vacation days", domain.ModePolicy, 300)

	if strings.Contains(text, "b") {
		t.Fatal("second result must be dropped entirely")
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
}

func TestContextEmptySearchShortCircuits(t *testing.T) {
	assembler := NewContextAssembler(&fakeRetriever{})

	text, sources := assembler.ContextForQuestion(context.Background(), "vacation days", domain.ModePolicy, 2000)
	if text != "" || sources != nil {
		t.Fatalf("expected empty short-circuit, got %q / %v", text, sources)
	}
}

func TestContextModeFilters(t *testing.T) {
	cases := []struct {
		mode domain.Mode
		want domain.Category
	}{
		{domain.ModePolicy, ""},
		{domain.ModeBenefits, domain.CategoryBenefits},
		{domain.ModePayroll, domain.CategoryPayroll},
		{domain.Mode("unknown"), ""},
	}

	for _, tc := range cases {
		retriever := &fakeRetriever{}
		assembler := NewContextAssembler(retriever)
		assembler.ContextForQuestion(context.Background(), "vacation days", tc.mode, 2000)
		if retriever.lastFilter.Category != tc.want {
			t.Fatalf("mode %q: expected category %q, got %q", tc.mode, tc.want, retriever.lastFilter.Category)
		}
	}
}

func TestContextSnippetTruncatedTo200(t *testing.T) {
	long := strings.Repeat("x", 300)
	retriever := &fakeRetriever{results: []domain.SearchResult{resultWith("Doc - Section", long)}}
	assembler := NewContextAssembler(retriever)

	_, sources := assembler.ContextForQuestion(context.Background(), "vacation days", domain.ModePolicy, 2000)
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if len(sources[0].Snippet) != snippetLength+len(ellipsis) {
		t.Fatalf("expected snippet of %d chars, got %d", snippetLength+len(ellipsis), len(sources[0].Snippet))
	}
	if !strings.HasSuffix(sources[0].Snippet, ellipsis) {
		t.Fatal("long snippet must end with ellipsis")
	}
}
