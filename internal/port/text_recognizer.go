package port

import "context"

// RecognizeInput carries an uploaded document for text recognition.
type RecognizeInput struct {
	Data        []byte
	ContentType string
}

// TextRecognizer extracts raw text from an image or PDF.
type TextRecognizer interface {
	Recognize(ctx context.Context, input RecognizeInput) (string, error)
}
