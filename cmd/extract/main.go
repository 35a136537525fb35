// Command extract runs field extraction over a document and prints the result
// as JSON. Images and PDFs go through text recognition first; anything else is
// read as plain text.
//
// Usage:
//
//	go run ./cmd/extract -file receipt.jpg
//	echo "Vendor: Acme" | go run ./cmd/extract
//	go run ./cmd/extract -file receipt.pdf -remote
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/extractor"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/ocr"
	"invoicedesk/internal/parser/chain"
	"invoicedesk/internal/parser/heuristic"
	"invoicedesk/internal/port"
)

type result struct {
	Provider string                 `json:"provider"`
	Text     string                 `json:"text,omitempty"`
	Fields   domain.ExtractedFields `json:"fields"`
	Found    []string               `json:"found"`
	Invoice  *domain.InvoiceFields  `json:"invoice,omitempty"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "", "document to extract from (reads stdin when empty)")
	remote := flag.Bool("remote", false, "use the configured remote parsers ahead of the local rules")
	defaults := flag.Bool("defaults", false, "also print the invoice fields with defaults applied")
	showText := flag.Bool("text", false, "include the recognized text in the output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(config.LogConfig{Level: "warn", Format: "console"})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	text, err := recognize(ctx, data, cfg.OCR, log)
	if err != nil {
		return err
	}

	var fp port.FieldParser = heuristic.NewParser()
	if *remote {
		if fp, err = chain.Build(&cfg.Parser, log); err != nil {
			return err
		}
	}

	out, err := fp.Parse(ctx, port.ParseInput{Text: text})
	if err != nil {
		return fmt.Errorf("parsing fields: %w", err)
	}

	res := result{
		Provider: out.Provider,
		Fields:   out.Fields,
		Found:    out.Fields.PresentFields(),
	}
	if *showText {
		res.Text = text
	}
	if *defaults {
		inv := extractor.ApplyDefaults(out.Fields, time.Now())
		res.Invoice = &inv
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// recognize returns data as text, running OCR when it is an image or PDF.
func recognize(ctx context.Context, data []byte, cfg config.OCRConfig, log *zap.Logger) (string, error) {
	contentType := mimetype.Detect(data).String()
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		return string(data), nil
	}
	r := ocr.NewRecognizer(ocr.NewTesseractEngine(cfg), cfg, log)
	text, err := r.Recognize(ctx, port.RecognizeInput{Data: data, ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}
