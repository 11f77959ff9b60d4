package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfMagic is the signature every PDF file starts with
var pdfMagic = []byte("%PDF-")

// LooksLikePDF reports whether data starts with the PDF signature
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractPDFText returns the plain text of every page of a PDF document.
// The parser panics on some malformed files, so panics become errors.
func ExtractPDFText(data []byte) (text string, err error) {
	if !LooksLikePDF(data) {
		return "", fmt.Errorf("not a PDF document")
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	if reader.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
