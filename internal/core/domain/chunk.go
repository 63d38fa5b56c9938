package domain

import "strings"

// Category is the coarse topical tag used to filter retrieval.
type Category string

const (
	CategoryPolicy     Category = "policy"
	CategoryBenefits   Category = "benefits"
	CategoryPayroll    Category = "payroll"
	CategoryOnboarding Category = "onboarding"
	CategoryGeneral    Category = "general"
)

// Ordered: first match against the source path wins.
var pathCategoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"policies", CategoryPolicy},
	{"benefits", CategoryBenefits},
	{"payroll", CategoryPayroll},
	{"onboarding", CategoryOnboarding},
}

func CategoryFromPath(path string) Category {
	lower := strings.ToLower(path)
	for _, entry := range pathCategoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return CategoryGeneral
}

// DocumentChunk is one retrievable passage of a source document.
// Chunks are created once per corpus build and are immutable afterwards;
// a rebuild replaces them wholesale.
type DocumentChunk struct {
	Content      string   `json:"content"`
	SourceFile   string   `json:"source_file"`
	Section      string   `json:"section"`
	ChunkID      string   `json:"chunk_id"`
	Category     Category `json:"category"`
	DocTitle     string   `json:"doc_title"`
	SectionTitle string   `json:"section_title"`
}
