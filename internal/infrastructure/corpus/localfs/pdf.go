package localfs

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDFPages returns the plain text of each page. Pages that fail
// text extraction come back empty and are filtered by the chunker's
// minimum-length rule.
func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for pageNo := 1; pageNo <= total; pageNo++ {
		page := reader.Page(pageNo)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
