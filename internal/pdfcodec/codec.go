// Package pdfcodec converts between plain text and the paginated PDF
// format used for knowledge files. The PDF layout is an implementation
// detail of this package; no other component may depend on it.
package pdfcodec

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
)

const (
	fontFamily = "Courier"
	fontSize   = 12

	pageMargin = 15 // mm
	lineHeight = 6  // mm
	textWidth  = 180
)

// Fixed so that encoding the same text twice yields identical bytes.
var creationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Codec implements the text/PDF conversions used by the manager.
type Codec struct{}

func New() *Codec {
	return &Codec{}
}

// Encode lays out plain text on A4 pages with a fixed monospace font,
// wrapping at word boundaries and flowing onto new pages as needed.
func (c *Codec) Encode(text string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(creationDate)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetFont(fontFamily, "", fontSize)
	doc.AddPage()
	doc.MultiCell(textWidth, lineHeight, text, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfcodec: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract walks every page in order and returns the concatenated page
// text, whitespace within a page collapsed to single spaces and pages
// joined by newlines. Zero-length input short-circuits to "" without
// touching the reader, which fails on empty buffers.
func (c *Codec) Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", nil
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcodec: extract: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdfcodec: extract: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdfcodec: extract page %d: %w", i, err)
		}
		b.WriteString(strings.Join(strings.Fields(pageText), " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
