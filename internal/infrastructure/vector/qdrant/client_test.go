package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

func TestRecreateDropsThenCreatesCollection(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/collections/hr_documents":
			// Absent collection: Recreate must shrug this off.
			http.NotFound(w, r)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/hr_documents":
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode create body: %v", err)
			}
			vectors, _ := payload["vectors"].(map[string]any)
			if vectors["distance"] != "Cosine" {
				t.Fatalf("expected cosine distance, got %v", vectors["distance"])
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "hr_documents")
	if err := client.Recreate(context.Background(), 768); err != nil {
		t.Fatalf("Recreate() error = %v", err)
	}
	want := []string{"DELETE /collections/hr_documents", "PUT /collections/hr_documents"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("unexpected call sequence: %v", calls)
	}
}

func TestUpsertChunksUsesStablePointIDs(t *testing.T) {
	var captured struct {
		Points []struct {
			ID      string         `json:"id"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/collections/hr_documents/points") {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode upsert body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "hr_documents")
	chunk := domain.DocumentChunk{
		ChunkID:    "abc123def456",
		SourceFile: "policies/leave.md",
		Section:    "Handbook - Vacation",
		Category:   domain.CategoryPolicy,
		Content:    "## Vacation\ntwenty days",
	}

	if err := client.UpsertChunks(context.Background(), []domain.DocumentChunk{chunk}, [][]float32{{0.1, 0.2}}); err != nil {
		t.Fatalf("first UpsertChunks() error = %v", err)
	}
	firstID := captured.Points[0].ID

	if err := client.UpsertChunks(context.Background(), []domain.DocumentChunk{chunk}, [][]float32{{0.1, 0.2}}); err != nil {
		t.Fatalf("second UpsertChunks() error = %v", err)
	}
	if captured.Points[0].ID != firstID {
		t.Fatalf("point id changed between upserts: %s vs %s", firstID, captured.Points[0].ID)
	}
	if captured.Points[0].Payload["category"] != "policy" {
		t.Fatalf("unexpected payload category: %v", captured.Points[0].Payload["category"])
	}
}

func TestUpsertChunksRejectsMismatchedVectors(t *testing.T) {
	client := New("http://localhost:6333", "hr_documents")
	err := client.UpsertChunks(context.Background(), []domain.DocumentChunk{{ChunkID: "a"}}, nil)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestQueryAppliesCategoryFilterAndConvertsScore(t *testing.T) {
	var capturedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/hr_documents/points/search" {
			if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
				t.Fatalf("decode search body: %v", err)
			}
			_, _ = w.Write([]byte(`{"result":[{"score":0.82,"payload":{"chunk_id":"c1","source_file":"policies/leave.md","section":"Handbook - Vacation","category":"policy","text":"twenty days"}}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "hr_documents")
	hits, err := client.Query(context.Background(), []float32{0.1, 0.2}, 5, domain.SearchFilter{Category: domain.CategoryPolicy})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if diff := hits[0].Distance - 0.18; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected distance 0.18, got %v", hits[0].Distance)
	}
	if hits[0].Chunk.Section != "Handbook - Vacation" {
		t.Fatalf("unexpected section: %q", hits[0].Chunk.Section)
	}

	filter, ok := capturedBody["filter"].(map[string]any)
	if !ok {
		t.Fatalf("expected filter in search body: %v", capturedBody)
	}
	must, _ := filter["must"].([]any)
	if len(must) != 1 {
		t.Fatalf("expected one must clause, got %v", filter)
	}
}

func TestQueryWithoutFilterOmitsFilterClause(t *testing.T) {
	var capturedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Fatalf("decode search body: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "hr_documents")
	if _, err := client.Query(context.Background(), []float32{0.1}, 5, domain.SearchFilter{}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if _, ok := capturedBody["filter"]; ok {
		t.Fatalf("unfiltered query must not send a filter clause")
	}
}

func TestExistsDistinguishesMissingCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/present" {
			_, _ = w.Write([]byte(`{"result":{"status":"green"}}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	present := New(server.URL, "present")
	ok, err := present.Exists(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected present collection, got ok=%v err=%v", ok, err)
	}

	missing := New(server.URL, "missing")
	ok, err = missing.Exists(context.Background())
	if err != nil || ok {
		t.Fatalf("expected missing collection, got ok=%v err=%v", ok, err)
	}
}
