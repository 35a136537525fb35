// Package ocr recognizes text in uploaded invoice images and PDFs.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/metrics"
	"invoicedesk/internal/port"
)

// Recognizer implements port.TextRecognizer. Images go through an ImageEngine,
// optionally after preprocessing; PDFs are read from their text layer.
type Recognizer struct {
	engine     ImageEngine
	cfg        config.OCRConfig
	log        *zap.Logger
	preprocess func([]byte) ([]byte, error)
	pdfText    func([]byte) (string, error)
}

// NewRecognizer creates a Recognizer around engine.
func NewRecognizer(engine ImageEngine, cfg config.OCRConfig, log *zap.Logger) *Recognizer {
	return &Recognizer{
		engine:     engine,
		cfg:        cfg,
		log:        log,
		preprocess: Preprocess,
		pdfText:    PDFText,
	}
}

type recognizeResult struct {
	text string
	err  error
}

// Recognize extracts text from data. The content type is sniffed when empty.
// Errors wrap domain.ErrRecognitionFailed, domain.ErrRecognitionTimeout,
// domain.ErrNoTextRecognized or domain.ErrUnsupportedFileType.
func (r *Recognizer) Recognize(ctx context.Context, input port.RecognizeInput) (string, error) {
	contentType := input.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(input.Data).String()
	}
	ft, ok := domain.AllowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}
	kind := string(ft)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	done := make(chan recognizeResult, 1)
	go func() {
		text, err := r.run(ft, input.Data)
		done <- recognizeResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		metrics.RecognitionsTotal.WithLabelValues(kind, "timeout").Inc()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.ErrRecognitionTimeout
		}
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			metrics.RecognitionsTotal.WithLabelValues(kind, "error").Inc()
			r.log.Warn("text recognition failed", zap.String("kind", kind), zap.Error(res.err))
			return "", fmt.Errorf("%w: %v", domain.ErrRecognitionFailed, res.err)
		}
		if strings.TrimSpace(res.text) == "" {
			metrics.RecognitionsTotal.WithLabelValues(kind, "empty").Inc()
			return "", domain.ErrNoTextRecognized
		}
		metrics.RecognitionsTotal.WithLabelValues(kind, "ok").Inc()
		r.log.Debug("text recognized", zap.String("kind", kind), zap.Int("chars", len(res.text)))
		return res.text, nil
	}
}

func (r *Recognizer) run(ft domain.FileType, data []byte) (string, error) {
	if ft == domain.FileTypePDF {
		return r.pdfText(data)
	}
	image := data
	if r.cfg.Preprocess {
		processed, err := r.preprocess(data)
		if err != nil {
			r.log.Debug("preprocessing skipped", zap.Error(err))
		} else {
			image = processed
		}
	}
	return r.engine.Text(image)
}
