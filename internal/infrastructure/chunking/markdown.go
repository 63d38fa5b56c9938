package chunking

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

// Sections shorter than this (after trimming) are noise, not knowledge.
const minSectionLength = 50

const chunkIDLength = 12

// Chunker splits markdown documents into section-level retrievable
// passages. Split points sit immediately before each "## " heading, so
// the heading stays with the content it introduces.
type Chunker struct {
	MinSectionLength int
}

func NewChunker() *Chunker {
	return &Chunker{MinSectionLength: minSectionLength}
}

// Chunk parses one markdown document. A document without any "## "
// heading yields no chunks: the body before the first heading is never
// treated as a section of its own.
func (c *Chunker) Chunk(documentText, sourcePath string) []domain.DocumentChunk {
	docTitle := documentTitle(documentText, sourcePath)
	category := domain.CategoryFromPath(sourcePath)

	sections := splitSections(documentText)
	chunks := make([]domain.DocumentChunk, 0, len(sections))
	for i, section := range sections {
		content := strings.TrimSpace(section)
		if !strings.HasPrefix(content, "## ") {
			// Preamble before the first heading, or stray separators.
			continue
		}
		if len(content) < c.MinSectionLength {
			continue
		}

		sectionTitle := headingText(content)
		if sectionTitle == "" {
			sectionTitle = fmt.Sprintf("Section %d", i)
		}

		chunks = append(chunks, domain.DocumentChunk{
			Content:      content,
			SourceFile:   sourcePath,
			Section:      docTitle + " - " + sectionTitle,
			ChunkID:      chunkID(sourcePath, sectionTitle, i),
			Category:     category,
			DocTitle:     docTitle,
			SectionTitle: sectionTitle,
		})
	}
	return chunks
}

// ChunkPages emits one chunk per extracted page of a heading-less
// document (e.g. a PDF), with synthetic "Page {n}" section labels.
func (c *Chunker) ChunkPages(pages []string, sourcePath string) []domain.DocumentChunk {
	docTitle := fileStem(sourcePath)
	category := domain.CategoryFromPath(sourcePath)

	chunks := make([]domain.DocumentChunk, 0, len(pages))
	for i, page := range pages {
		content := strings.TrimSpace(page)
		if len(content) < c.MinSectionLength {
			continue
		}
		sectionTitle := fmt.Sprintf("Page %d", i+1)
		chunks = append(chunks, domain.DocumentChunk{
			Content:      content,
			SourceFile:   sourcePath,
			Section:      docTitle + " - " + sectionTitle,
			ChunkID:      chunkID(sourcePath, sectionTitle, i),
			Category:     category,
			DocTitle:     docTitle,
			SectionTitle: sectionTitle,
		})
	}
	return chunks
}

// chunkID hashes (path, section title, ordinal) so an unchanged section
// keeps its identifier across rebuilds and re-indexing stays idempotent.
func chunkID(sourcePath, sectionTitle string, index int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%d", sourcePath, sectionTitle, index)))
	return hex.EncodeToString(sum[:])[:chunkIDLength]
}

// splitSections cuts the document immediately before every line that
// starts a second-level heading. The segment before the first heading
// (if any) stays as element zero.
func splitSections(text string) []string {
	lines := strings.Split(text, "\n")
	var sections []string
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

// documentTitle takes the first top-level heading, falling back to the
// filename stem.
func documentTitle(text, sourcePath string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return fileStem(sourcePath)
}

func headingText(section string) string {
	firstLine := section
	if idx := strings.IndexByte(section, '\n'); idx >= 0 {
		firstLine = section[:idx]
	}
	return strings.TrimSpace(strings.TrimPrefix(firstLine, "## "))
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
