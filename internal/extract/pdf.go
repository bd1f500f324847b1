package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text of the PDF file at path.
func PDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening pdf: %w", ErrExtraction, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: reading pdf text: %w", ErrExtraction, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("%w: reading pdf text: %w", ErrExtraction, err)
	}

	text := normalizeWhitespace(buf.String())
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}
