// Package pdf extracts arXiv identifiers from PDF files so papers on disk
// can seed a graph.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxScanPages bounds how far into a PDF we look for an identifier.
const maxScanPages = 3

var (
	// New-style identifiers: arXiv:2312.03797v2
	newStylePattern = regexp.MustCompile(`(?i)arxiv\s*:\s*(\d{4}\.\d{4,5})(v\d+)?`)
	// Old-style identifiers: arXiv:hep-ph/9901234v1
	oldStylePattern = regexp.MustCompile(`(?i)arxiv\s*:\s*([a-z\-]+(\.[a-z]{2})?/\d{7})(v\d+)?`)
	// Bare new-style identifiers from the arXiv side stamp, e.g. "2312.03797v1 [hep-ex]".
	stampPattern = regexp.MustCompile(`\b(\d{4}\.\d{4,5})(v\d+)?\s*\[[a-z\-]+(\.[A-Za-z]{2})?\]`)
)

// ExtractArXivID extracts an arXiv identifier from a PDF file, without its
// version suffix. It returns "" if none is found.
func ExtractArXivID(filePath string) (string, error) {
	text, err := ExtractText(filePath, maxScanPages)
	if err != nil {
		return "", err
	}
	return FindArXivID(text), nil
}

// ExtractText extracts all text from the first N pages of a PDF.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// FindArXivID returns the first arXiv identifier in text, preferring an
// explicit "arXiv:" prefix over the side stamp.
func FindArXivID(text string) string {
	for _, p := range []*regexp.Regexp{newStylePattern, oldStylePattern, stampPattern} {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
