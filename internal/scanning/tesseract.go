package scanning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Recognizer interface using a local Tesseract engine.
// The engine is not safe for concurrent use, so calls are serialized.
type Tesseract struct {
	mu         sync.Mutex
	client     *gosseract.Client
	preprocess bool
}

// NewTesseract creates a Tesseract recognizer for the given languages (e.g. "eng")
func NewTesseract(preprocess bool, languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting tesseract language: %w", err)
	}

	return &Tesseract{
		client:     client,
		preprocess: preprocess,
	}, nil
}

// Recognize runs OCR on an invoice image and returns its text lines
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	finalImageData, err := prepareImageData(imageData, contentType, t.preprocess)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(finalImageData); err != nil {
		return nil, fmt.Errorf("loading image into tesseract: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("running tesseract: %w", err)
	}

	return strings.Split(text, "\n"), nil
}

// Close releases the Tesseract engine
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
