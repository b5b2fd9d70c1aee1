package pdfsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrNotPDF is returned when the input does not start with a PDF header
var ErrNotPDF = errors.New("not a PDF document")

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// sniffLen is how much of the input is read to identify it
const sniffLen = 512

// checkHeader reads the start of r and returns ErrNotPDF, naming what the
// input looks like, unless it begins with a PDF header
func checkHeader(r io.ReaderAt) error {
	head := make([]byte, sniffLen)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	head = head[:n]

	if bytes.HasPrefix(head, pdfMagic) {
		return nil
	}
	if kind := describe(head); kind != "" {
		return fmt.Errorf("input looks like %s: %w", kind, ErrNotPDF)
	}
	return ErrNotPDF
}

// describe names common non-PDF inputs by their magic bytes
func describe(head []byte) string {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return "a ZIP archive (DOCX, XLSX, PPTX or ODT)"
	case isHTML(head):
		return "an HTML document"
	default:
		return ""
	}
}

func isHTML(head []byte) bool {
	upper := bytes.ToUpper(bytes.TrimLeft(head, " \t\r\n"))
	return bytes.HasPrefix(upper, []byte("<!DOCTYPE HTML")) ||
		bytes.HasPrefix(upper, []byte("<HTML")) ||
		(bytes.HasPrefix(upper, []byte("<?XML")) && bytes.Contains(upper, []byte("<HTML")))
}
