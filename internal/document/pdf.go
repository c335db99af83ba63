// Package document validates uploaded documents and archives them.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF is returned for files that are not readable PDFs.
	ErrNotPDF = errors.New("only PDF files are supported")
	// ErrTooLarge is returned for files above the upload limit.
	ErrTooLarge = errors.New("file exceeds the maximum upload size")
	// ErrEmpty is returned for zero-byte files.
	ErrEmpty = errors.New("file is empty")
)

// IsPDFName reports whether name carries a .pdf extension.
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// InspectPDF opens data as a PDF and returns its page count.
func InspectPDF(data []byte) (pages int, err error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	n := r.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	return n, nil
}

// Validate checks a file before upload: extension, size and structure.
// A maxSize of zero disables the size check.
func Validate(name string, data []byte, maxSize int64) (int, error) {
	if !IsPDFName(name) {
		return 0, ErrNotPDF
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return 0, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, name, len(data))
	}
	return InspectPDF(data)
}
