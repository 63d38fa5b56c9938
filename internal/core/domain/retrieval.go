package domain

import "time"

type SearchFilter struct {
	Category Category
}

// Mode selects the retrieval scope for a question. Policy mode searches
// all categories; unknown modes fall back to policy behaviour.
type Mode string

const (
	ModePolicy   Mode = "policy"
	ModeBenefits Mode = "benefits"
	ModePayroll  Mode = "payroll"
)

// SearchResult is one ranked hit from the vector index. Similarity is
// derived from cosine distance (1 - distance), rounded to 3 decimals.
type SearchResult struct {
	Content      string   `json:"content"`
	SourceFile   string   `json:"source"`
	Section      string   `json:"section"`
	Category     Category `json:"category"`
	DocTitle     string   `json:"doc_title"`
	SectionTitle string   `json:"section_title"`
	Similarity   float64  `json:"similarity"`
}

// IndexHit is the raw unit returned by the vector index boundary.
type IndexHit struct {
	Chunk    DocumentChunk
	Distance float64
}

// Source is the citation record built per passage included in the context.
type Source struct {
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	Category   Category `json:"category"`
	Similarity float64  `json:"similarity"`
}

// Answer is the full payload handed to the serving layer.
type Answer struct {
	Text      string   `json:"answer"`
	Sources   []Source `json:"sources"`
	OODReject bool     `json:"ood_reject"`
	Company   string   `json:"company,omitempty"`
}

type CompanyInfo struct {
	CompanyName string `json:"company_name"`
}

type BuildStatus string

const (
	BuildRunning   BuildStatus = "running"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
)

// IndexBuild is one bookkeeping row per index (re)build pass.
type IndexBuild struct {
	ID         string      `json:"id"`
	Collection string      `json:"collection"`
	Status     BuildStatus `json:"status"`
	ChunkCount int         `json:"chunk_count"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
