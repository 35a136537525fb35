package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page tree bounds. Reader.Page follows /Kids and /Parent links without
// tracking visited nodes, so cyclic trees are rejected before any page is read.
const (
	maxPageTreeDepth = 64
	maxPageTreeNodes = 10000
)

var errMalformedPageTree = errors.New("malformed pdf page tree")

// PDFText returns the embedded text layer of a PDF, one line per text row.
func PDFText(data []byte) (text string, err error) {
	// The pdf package panics on malformed object syntax.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	pages, err := collectPages(r.Trailer().Key("Root").Key("Pages"))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, v := range pages {
		rows, err := pdf.Page{V: v}.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i+1, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// collectPages returns the leaf pages under root in document order.
func collectPages(root pdf.Value) ([]pdf.Value, error) {
	w := &pageWalker{}
	if err := w.walk(root, 0); err != nil {
		return nil, err
	}
	return w.pages, nil
}

type pageWalker struct {
	nodes int
	pages []pdf.Value
}

func (w *pageWalker) walk(node pdf.Value, depth int) error {
	if depth > maxPageTreeDepth {
		return fmt.Errorf("%w: nested deeper than %d levels", errMalformedPageTree, maxPageTreeDepth)
	}
	w.nodes++
	if w.nodes > maxPageTreeNodes {
		return fmt.Errorf("%w: more than %d nodes", errMalformedPageTree, maxPageTreeNodes)
	}

	switch node.Key("Type").Name() {
	case "Pages":
		kids := node.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			if err := w.walk(kids.Index(i), depth+1); err != nil {
				return err
			}
		}
	case "Page":
		if err := checkParents(node); err != nil {
			return err
		}
		w.pages = append(w.pages, node)
	}
	return nil
}

// checkParents bounds the /Parent chain that inherited page attributes are
// looked up through.
func checkParents(page pdf.Value) error {
	v := page
	for depth := 0; !v.IsNull(); depth++ {
		if depth > maxPageTreeDepth {
			return fmt.Errorf("%w: /Parent chain longer than %d", errMalformedPageTree, maxPageTreeDepth)
		}
		v = v.Key("Parent")
	}
	return nil
}
