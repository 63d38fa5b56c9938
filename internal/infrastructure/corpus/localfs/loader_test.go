package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opryamko/hr-assistant/internal/infrastructure/chunking"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadChunksWalksMarkdownTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "policies", "leave.md"),
		"# Leave Policy\n\n## Vacation\n"+strings.Repeat("vacation details. ", 10))
	writeFile(t, filepath.Join(root, "benefits", "health.md"),
		"# Health Benefits\n\n## Plans\n"+strings.Repeat("plan details. ", 10))
	writeFile(t, filepath.Join(root, "README.txt"), "not a corpus document")

	loader := New(root, chunking.NewChunker(), nil)
	chunks, err := loader.LoadChunks(context.Background())
	if err != nil {
		t.Fatalf("LoadChunks() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestLoadChunksSkipsCorruptFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "policies", "ok.md"),
		"# Policy\n\n## Rules\n"+strings.Repeat("rule details. ", 10))
	// Invalid UTF-8 must not abort the walk.
	if err := os.WriteFile(filepath.Join(root, "policies", "broken.md"), []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	loader := New(root, chunking.NewChunker(), nil)
	chunks, err := loader.LoadChunks(context.Background())
	if err != nil {
		t.Fatalf("LoadChunks() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk from the healthy file, got %d", len(chunks))
	}
}

func TestLoadChunksMissingRootIsEmptyNotError(t *testing.T) {
	loader := New(filepath.Join(t.TempDir(), "absent"), chunking.NewChunker(), nil)
	chunks, err := loader.LoadChunks(context.Background())
	if err != nil {
		t.Fatalf("LoadChunks() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected empty chunk list, got %d", len(chunks))
	}
}

func TestCompanyInfoSidecar(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "company_info.json"), `{"company_name":"Acme Corp"}`)

	loader := New(root, chunking.NewChunker(), nil)
	if got := loader.CompanyInfo().CompanyName; got != "Acme Corp" {
		t.Fatalf("expected sidecar company name, got %q", got)
	}
}

func TestCompanyInfoDefaultsWhenSidecarAbsent(t *testing.T) {
	loader := New(t.TempDir(), chunking.NewChunker(), nil)
	if got := loader.CompanyInfo().CompanyName; got != defaultCompanyName {
		t.Fatalf("expected default company name, got %q", got)
	}
}
