package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/observability/metrics"
)

type fakeAsk struct {
	answer   *domain.Answer
	err      error
	lastMode domain.Mode
}

func (f *fakeAsk) Ask(_ context.Context, _ string, mode domain.Mode, _ int) (*domain.Answer, error) {
	f.lastMode = mode
	return f.answer, f.err
}

type fakeRetriever struct {
	results    []domain.SearchResult
	ready      bool
	lastFilter domain.SearchFilter
	lastTopK   int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, topK int, filter domain.SearchFilter) []domain.SearchResult {
	f.lastTopK = topK
	f.lastFilter = filter
	return f.results
}

func (f *fakeRetriever) Ready() bool { return f.ready }

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishReindexRequested(_ context.Context, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, reason)
	return nil
}

func (f *fakeQueue) SubscribeReindexRequested(_ context.Context, _ func(context.Context, string, time.Time) error) error {
	return nil
}

func newTestRouter(ask *fakeAsk, retriever *fakeRetriever, queue *fakeQueue) http.Handler {
	return NewRouter(ask, retriever, queue, metrics.NewAPIMetrics("api-test")).Handler()
}

func TestHealthzReportsReadiness(t *testing.T) {
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{ready: true}, &fakeQueue{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body struct {
		Status string `json:"status"`
		Ready  bool   `json:"ready"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" || !body.Ready {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAskReturnsAnswer(t *testing.T) {
	ask := &fakeAsk{answer: &domain.Answer{
		Text:    "You receive 20 vacation days per year.",
		Sources: []domain.Source{{Title: "Handbook - Vacation", Similarity: 0.82}},
		Company: "TechCorp Solutions",
	}}
	handler := newTestRouter(ask, &fakeRetriever{ready: true}, &fakeQueue{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/ask",
		strings.NewReader(`{"question":"How many vacation days do I get?","mode":"benefits"}`))
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if ask.lastMode != domain.ModeBenefits {
		t.Fatalf("mode not passed through, got %q", ask.lastMode)
	}
	var body domain.Answer
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Text != "You receive 20 vacation days per year." {
		t.Fatalf("unexpected answer: %q", body.Text)
	}
	if len(body.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(body.Sources))
	}
}

func TestAskDefaultsModeToPolicy(t *testing.T) {
	ask := &fakeAsk{answer: &domain.Answer{Text: "ok"}}
	handler := newTestRouter(ask, &fakeRetriever{}, &fakeQueue{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/ask",
		strings.NewReader(`{"question":"How many vacation days do I get?"}`))
	handler.ServeHTTP(recorder, request)

	if ask.lastMode != domain.ModePolicy {
		t.Fatalf("expected default policy mode, got %q", ask.lastMode)
	}
}

func TestAskValidation(t *testing.T) {
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{}, &fakeQueue{})

	cases := []struct {
		name string
		body string
	}{
		{"empty question", `{"question":"  "}`},
		{"invalid json", `{question`},
	}

	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(tc.body))
		handler.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, recorder.Code)
		}
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{}, &fakeQueue{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

func TestSearchPassesFilterAndReturnsResults(t *testing.T) {
	retriever := &fakeRetriever{
		ready: true,
		results: []domain.SearchResult{{
			Content:    "Health coverage includes medical, dental, and vision.",
			SourceFile: "health_insurance.md",
			Section:    "Health Insurance - Coverage",
			Category:   domain.CategoryBenefits,
			Similarity: 0.91,
		}},
	}
	handler := newTestRouter(&fakeAsk{}, retriever, &fakeQueue{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/search",
		strings.NewReader(`{"query":"dental coverage","top_k":3,"category":"benefits"}`))
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if retriever.lastTopK != 3 || retriever.lastFilter.Category != domain.CategoryBenefits {
		t.Fatalf("search args not passed through: topK=%d filter=%+v", retriever.lastTopK, retriever.lastFilter)
	}
	var body searchResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].Similarity != 0.91 {
		t.Fatalf("unexpected results: %+v", body.Results)
	}
}

func TestSearchEmptyResultsIsEmptyArray(t *testing.T) {
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{}, &fakeQueue{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/search",
		strings.NewReader(`{"query":"anything"}`))
	handler.ServeHTTP(recorder, request)

	if got := strings.TrimSpace(recorder.Body.String()); got != `{"results":[]}` {
		t.Fatalf("expected empty array body, got %s", got)
	}
}

func TestReindexQueuesRequest(t *testing.T) {
	queue := &fakeQueue{}
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{}, queue)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reindex", nil))

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", recorder.Code)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected one published request, got %d", len(queue.published))
	}
}

func TestReindexQueueUnavailable(t *testing.T) {
	queue := &fakeQueue{err: domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("no servers"))}
	handler := newTestRouter(&fakeAsk{}, &fakeRetriever{}, queue)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reindex", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}
