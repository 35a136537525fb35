package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// maxDimension bounds the longer image side handed to the OCR engine.
const maxDimension = 2400

// Preprocess converts a photographed invoice to a grayscale, contrast-boosted,
// sharpened PNG, which Tesseract reads more reliably than raw camera output.
func Preprocess(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := src.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		src = imaging.Fit(src, maxDimension, maxDimension, imaging.Lanczos)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
