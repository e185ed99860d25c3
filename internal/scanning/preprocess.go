package scanning

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// thresholdSigma is the Gaussian sigma for a 31x31 neighbourhood
	thresholdSigma = 5.0
	// thresholdOffset is subtracted from the local mean before comparing
	thresholdOffset = 2
	// denoiseSigma is a light blur that removes speckle before thresholding
	denoiseSigma = 0.6
)

// Preprocess prepares a PNG for OCR: grayscale, denoise, then a Gaussian
// adaptive threshold that turns the page into black text on white.
func Preprocess(pngData []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	gray := imaging.Blur(imaging.Grayscale(src), denoiseSigma)
	binary := adaptiveThreshold(gray, thresholdSigma, thresholdOffset)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, binary, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// adaptiveThreshold sets a pixel white when it is brighter than the
// Gaussian-weighted mean of its neighbourhood minus offset, black otherwise.
// gray must be a grayscale NRGBA image (R == G == B).
func adaptiveThreshold(gray *image.NRGBA, sigma float64, offset int) *image.Gray {
	mean := imaging.Blur(gray, sigma)
	bounds := gray.Bounds()
	out := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := int(gray.Pix[gray.PixOffset(x, y)])
			t := int(mean.Pix[mean.PixOffset(x, y)]) - offset
			if v > t {
				out.Pix[out.PixOffset(x, y)] = 255
			}
		}
	}
	return out
}
