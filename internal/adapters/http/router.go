package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/core/ports"
	"github.com/opryamko/hr-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	ask       ports.QuestionService
	retriever ports.Retriever
	queue     ports.ReindexQueue
	metrics   *metrics.APIMetrics
}

func NewRouter(
	ask ports.QuestionService,
	retriever ports.Retriever,
	queue ports.ReindexQueue,
	apiMetrics *metrics.APIMetrics,
) *Router {
	return &Router{
		ask:       ask,
		retriever: retriever,
		queue:     queue,
		metrics:   apiMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.askQuestion)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/reindex", rt.reindex)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  rt.retriever.Ready(),
	})
}

type askRequest struct {
	Question         string `json:"question"`
	Mode             string `json:"mode"`
	MaxContextLength int    `json:"max_context_length"`
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	mode := domain.Mode(req.Mode)
	if mode == "" {
		mode = domain.ModePolicy
	}

	start := time.Now()
	answer, err := rt.ask.Ask(r.Context(), req.Question, mode, req.MaxContextLength)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordGateDecision(serviceName, !answer.OODReject)
		if !answer.OODReject {
			rt.metrics.RecordRetrieval(serviceName, "/v1/ask", string(mode), len(answer.Sources), time.Since(start))
			if len(answer.Sources) == 0 {
				rt.metrics.RecordFallbackAnswer(serviceName, "/v1/ask")
			}
		}
	}

	writeJSON(w, http.StatusOK, answer)
}

type searchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	Category string `json:"category"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	results := rt.retriever.Search(r.Context(), req.Query, req.TopK, domain.SearchFilter{
		Category: domain.Category(req.Category),
	})
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "reindex queue is not configured"})
		return
	}

	reason := "api request " + requestIDFromContext(r.Context())
	if err := rt.queue.PublishReindexRequested(r.Context(), reason); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
