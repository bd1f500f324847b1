// Package extract pulls plain text out of ingestion inputs. PDF files go
// through a native parser, URLs are fetched and stripped down to their
// visible text. Everything comes back whitespace-normalized.
package extract

import (
	"errors"
	"strings"
)

// Sentinel errors for extraction operations.
var (
	// ErrExtraction indicates the input could not be parsed into text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyContent indicates the input parsed but contained no text.
	ErrEmptyContent = errors.New("no extractable text content")
)

// normalizeWhitespace collapses runs of whitespace into single spaces while
// keeping paragraph breaks, so the chunker still sees document structure.
func normalizeWhitespace(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n\n")
}
