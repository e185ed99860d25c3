package scanning

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// Azure implements the Recognizer interface using Azure Computer Vision printed-text OCR
type Azure struct {
	client     *computervision.BaseClient
	preprocess bool
}

// NewAzure creates a new Azure recognizer
func NewAzure(endpoint, apiKey string, preprocess bool) (*Azure, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("azure endpoint and api key are required")
	}

	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)

	return &Azure{
		client:     &client,
		preprocess: preprocess,
	}, nil
}

// Recognize sends the image to Azure and returns its lines in region order
func (a *Azure) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	finalImageData, err := prepareImageData(imageData, contentType, a.preprocess)
	if err != nil {
		return nil, err
	}

	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(finalImageData)),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return nil, fmt.Errorf("recognizing printed text: %w", err)
	}

	return linesFromOCRResult(result), nil
}

// linesFromOCRResult joins the words of every line; geometry is dropped
func linesFromOCRResult(result computervision.OcrResult) []string {
	var lines []string
	if result.Regions == nil {
		return lines
	}
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			words := make([]string, 0, len(*line.Words))
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return lines
}

// Close is a no-op for the Azure client
func (a *Azure) Close() error {
	return nil
}
