package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/infrastructure/resilience"
)

// Namespace for deriving stable point IDs from chunk IDs. Qdrant wants
// UUIDs; hashing the chunk ID keeps upserts idempotent across rebuilds.
var pointNamespace = uuid.MustParse("7d3f2a90-44c1-4bfa-9b52-8e1d0c6f5a31")

// Client is a vector index over one named Qdrant collection with a
// cosine similarity metric fixed at creation time.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, collection string) *Client {
	return NewWithOptions(baseURL, collection, Options{})
}

func NewWithOptions(baseURL, collection string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Collection() string {
	return c.collection
}

func (c *Client) Exists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create collection info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("qdrant collection info request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, statusError("collection info", resp)
	default:
		return true, nil
	}
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var response struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.collection)
	err := c.call(ctx, "count", http.MethodPost, path, map[string]any{"exact": true}, &response)
	if err != nil {
		return 0, err
	}
	return response.Result.Count, nil
}

// Recreate drops the collection if present and creates it fresh with
// cosine distance. Concurrent readers may observe an empty or missing
// collection until the following upsert completes.
func (c *Client) Recreate(ctx context.Context, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("invalid vector size: %d", vectorSize)
	}

	path := fmt.Sprintf("/collections/%s", c.collection)
	if err := c.call(ctx, "delete collection", http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	return c.call(ctx, "create collection", http.MethodPut, path, body, nil)
}

func (c *Client) UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     uuid.NewSHA1(pointNamespace, []byte(chunk.ChunkID)).String(),
			Vector: vectors[i],
			Payload: map[string]any{
				"chunk_id":      chunk.ChunkID,
				"source_file":   chunk.SourceFile,
				"section":       chunk.Section,
				"category":      string(chunk.Category),
				"doc_title":     chunk.DocTitle,
				"section_title": chunk.SectionTitle,
				"text":          chunk.Content,
			},
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.call(ctx, "upsert", http.MethodPut, path, map[string]any{"points": points}, nil)
}

func (c *Client) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	filter domain.SearchFilter,
) ([]domain.IndexHit, error) {
	if topK <= 0 {
		topK = 5
	}

	reqBody := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter.Category != "" {
		reqBody["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key":   "category",
					"match": map[string]any{"value": string(filter.Category)},
				},
			},
		}
	}

	var response struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	if err := c.call(ctx, "search", http.MethodPost, path, reqBody, &response); err != nil {
		return nil, err
	}

	hits := make([]domain.IndexHit, 0, len(response.Result))
	for _, r := range response.Result {
		hits = append(hits, domain.IndexHit{
			// Qdrant reports cosine similarity; the engine works in
			// distance terms.
			Distance: 1 - r.Score,
			Chunk: domain.DocumentChunk{
				ChunkID:      payloadString(r.Payload, "chunk_id"),
				SourceFile:   payloadString(r.Payload, "source_file"),
				Section:      payloadString(r.Payload, "section"),
				Category:     domain.Category(payloadString(r.Payload, "category")),
				DocTitle:     payloadString(r.Payload, "doc_title"),
				SectionTitle: payloadString(r.Payload, "section_title"),
				Content:      payloadString(r.Payload, "text"),
			},
		})
	}
	return hits, nil
}

func (c *Client) call(ctx context.Context, operation, method, path string, payload, out any) error {
	fn := func(callCtx context.Context) error {
		return c.doCall(callCtx, operation, method, path, payload, out)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, "qdrant."+operation, fn, classifyQdrantError)
	}
	return fn(ctx)
}

func (c *Client) doCall(ctx context.Context, operation, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	// Deleting an absent collection is not a failure.
	if resp.StatusCode == http.StatusNotFound && method == http.MethodDelete {
		return nil
	}
	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(raw)),
	}
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
