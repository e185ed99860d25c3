package scanning

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText implements the Recognizer interface for digitally generated PDFs by
// reading their text layer row by row instead of running OCR.
type PDFText struct{}

// NewPDFText creates a new PDFText recognizer
func NewPDFText() *PDFText {
	return &PDFText{}
}

// Recognize returns one line per text row of every page
func (p *PDFText) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	if normalizeMimeType(contentType) != mimePDF {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	reader, err := pdf.NewReader(bytes.NewReader(imageData), int64(len(imageData)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening PDF: %v", ErrUnreadableImage, err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("reading text of page %d: %w", i, err)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			lines = append(lines, strings.Join(words, " "))
		}
	}

	return lines, nil
}

// Close is a no-op
func (p *PDFText) Close() error {
	return nil
}
