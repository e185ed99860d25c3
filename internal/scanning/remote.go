package scanning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// RemoteConfig holds configuration for an HTTP OCR service
type RemoteConfig struct {
	URL           string
	Timeout       time.Duration
	Attempts      uint
	RetryDelay    time.Duration
	MinConfidence float64 // Blocks below this confidence are dropped
	Preprocess    bool
}

// Remote implements the Recognizer interface by posting the image to an OCR
// service that answers with {"blocks": [{"text": ..., "confidence": ...}]}.
type Remote struct {
	url           string
	attempts      uint
	retryDelay    time.Duration
	minConfidence float64
	preprocess    bool
	client        *http.Client
}

type remoteBlock struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type remoteResponse struct {
	Blocks []remoteBlock `json:"blocks"`
}

// NewRemote creates a new Remote recognizer
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ocr service url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &Remote{
		url:           cfg.URL,
		attempts:      cfg.Attempts,
		retryDelay:    cfg.RetryDelay,
		minConfidence: cfg.MinConfidence,
		preprocess:    cfg.Preprocess,
		client:        &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Recognize uploads the image and returns the recognized blocks as lines
func (r *Remote) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	finalImageData, err := prepareImageData(imageData, contentType, r.preprocess)
	if err != nil {
		return nil, err
	}

	var result remoteResponse
	err = retry.Do(
		func() error {
			var err error
			result, err = r.post(ctx, finalImageData)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("calling ocr service: %w", err)
	}

	lines := make([]string, 0, len(result.Blocks))
	for _, block := range result.Blocks {
		if block.Confidence < r.minConfidence {
			continue
		}
		lines = append(lines, block.Text)
	}
	return lines, nil
}

func (r *Remote) post(ctx context.Context, pngData []byte) (remoteResponse, error) {
	var result remoteResponse

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "invoice.png")
	if err != nil {
		return result, retry.Unrecoverable(fmt.Errorf("creating form file: %w", err))
	}
	if _, err := part.Write(pngData); err != nil {
		return result, retry.Unrecoverable(fmt.Errorf("writing form file: %w", err))
	}
	if err := writer.Close(); err != nil {
		return result, retry.Unrecoverable(fmt.Errorf("closing multipart writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, body)
	if err != nil {
		return result, retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("ocr service error (status %d): %s", resp.StatusCode, string(respBody))
		// Client errors will not change on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return result, retry.Unrecoverable(err)
		}
		return result, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, retry.Unrecoverable(fmt.Errorf("decoding response: %w", err))
	}
	return result, nil
}

// Close is a no-op for the HTTP client
func (r *Remote) Close() error {
	return nil
}
