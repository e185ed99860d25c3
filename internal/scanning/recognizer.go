package scanning

import (
	"context"
	"errors"
)

var (
	// ErrUnreadableImage is returned when image data cannot be decoded
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrUnsupportedContent is returned when a recognizer cannot handle the content type
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// Recognizer defines the interface for text recognition on invoice images
type Recognizer interface {
	// Recognize returns the text lines found in an image or PDF, in reading order
	Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error)
	// Close releases any resources held by the recognizer
	Close() error
}

// RecognizerFunc adapts a plain function to the Recognizer interface
type RecognizerFunc func(ctx context.Context, imageData []byte, contentType string) ([]string, error)

// Recognize calls f
func (f RecognizerFunc) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	return f(ctx, imageData, contentType)
}

// Close is a no-op
func (f RecognizerFunc) Close() error {
	return nil
}
