package quizify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource exposes a document's pages for lazy per-page text extraction.
type PageSource interface {
	PageCount() int
	// PageText returns the whitespace-joined plain text of a 1-based page.
	PageText(pageNumber int) (string, error)
}

// TextExtractor opens a raw document byte buffer into a PageSource.
type TextExtractor interface {
	Open(data []byte) (PageSource, error)
}

// PDFExtractor extracts page text from PDF bytes.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Open parses the PDF. Any parse failure is fatal to the caller's ingestion.
func (e *PDFExtractor) Open(data []byte) (src PageSource, err error) {
	// The pdf reader panics on some malformed files; surface that as an error.
	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if reader.NumPage() <= 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtraction)
	}
	return &pdfPages{reader: reader}, nil
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p *pdfPages) PageCount() int {
	return p.reader.NumPage()
}

func (p *pdfPages) PageText(pageNumber int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to extract text from page %d: %v", pageNumber, r)
		}
	}()

	page := p.reader.Page(pageNumber)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", pageNumber)
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", pageNumber, err)
	}
	return strings.Join(strings.Fields(content), " "), nil
}
