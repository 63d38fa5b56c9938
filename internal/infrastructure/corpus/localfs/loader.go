package localfs

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/opryamko/hr-assistant/internal/core/domain"
	"github.com/opryamko/hr-assistant/internal/infrastructure/chunking"
)

const companyInfoFile = "company_info.json"

const defaultCompanyName = "TechCorp Solutions"

// Loader walks a local document root and turns every supported file
// into chunks. One corrupt file never aborts a build: failures are
// logged and the file is skipped.
type Loader struct {
	root    string
	chunker *chunking.Chunker
	logger  *slog.Logger
	info    domain.CompanyInfo
}

func New(root string, chunker *chunking.Chunker, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		root:    root,
		chunker: chunker,
		logger:  logger,
		info:    loadCompanyInfo(root, logger),
	}
}

func (l *Loader) CompanyInfo() domain.CompanyInfo {
	return l.info
}

func (l *Loader) LoadChunks(ctx context.Context) ([]domain.DocumentChunk, error) {
	if _, err := os.Stat(l.root); err != nil {
		l.logger.Warn("corpus root missing", "root", l.root, "error", err)
		return nil, nil
	}

	var chunks []domain.DocumentChunk
	walkErr := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.logger.Warn("corpus walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fileChunks, ok := l.loadFile(path)
		if !ok {
			return nil
		}
		chunks = append(chunks, fileChunks...)
		l.logger.Debug("parsed document", "path", path, "chunks", len(fileChunks))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return chunks, nil
}

// loadFile returns false when the file is unsupported or unreadable.
func (l *Loader) loadFile(path string) ([]domain.DocumentChunk, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable document", "path", path, "error", err)
			return nil, false
		}
		if !utf8.Valid(raw) {
			l.logger.Warn("skipping non-utf8 document", "path", path)
			return nil, false
		}
		return l.chunker.Chunk(string(raw), path), true
	case ".pdf":
		pages, err := extractPDFPages(path)
		if err != nil {
			l.logger.Warn("skipping unparsable pdf", "path", path, "error", err)
			return nil, false
		}
		return l.chunker.ChunkPages(pages, path), true
	default:
		return nil, false
	}
}

func loadCompanyInfo(root string, logger *slog.Logger) domain.CompanyInfo {
	info := domain.CompanyInfo{CompanyName: defaultCompanyName}

	raw, err := os.ReadFile(filepath.Join(root, companyInfoFile))
	if err != nil {
		return info
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		logger.Warn("invalid company info sidecar", "root", root, "error", err)
		return domain.CompanyInfo{CompanyName: defaultCompanyName}
	}
	if strings.TrimSpace(info.CompanyName) == "" {
		info.CompanyName = defaultCompanyName
	}
	return info
}
