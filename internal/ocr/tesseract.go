package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"invoicedesk/internal/config"
)

// ImageEngine turns an encoded image into text.
type ImageEngine interface {
	Text(image []byte) (string, error)
}

// TesseractEngine runs Tesseract through gosseract. A client is created per
// call since gosseract clients are not safe for concurrent use.
type TesseractEngine struct {
	tessdataPrefix string
	language       string
}

// NewTesseractEngine creates a Tesseract-backed ImageEngine.
func NewTesseractEngine(cfg config.OCRConfig) *TesseractEngine {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &TesseractEngine{tessdataPrefix: cfg.TessdataPrefix, language: lang}
}

func (e *TesseractEngine) Text(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if e.tessdataPrefix != "" {
		client.SetTessdataPrefix(e.tessdataPrefix)
	}
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}
