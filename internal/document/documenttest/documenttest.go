// Package documenttest provides document fixtures for tests.
package documenttest

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rpggio/estimator/internal/document"
)

// PDF builds a minimal well-formed PDF with the given number of blank pages.
func PDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Archive is an in-memory document.Archive.
type Archive struct {
	mu      sync.Mutex
	objects map[string][]byte
	PutErr  error
}

// NewArchive creates an empty in-memory archive.
func NewArchive() *Archive {
	return &Archive{objects: map[string][]byte{}}
}

// Put implements document.Archive.
func (a *Archive) Put(_ context.Context, projectID, name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.PutErr != nil {
		return a.PutErr
	}
	a.objects[document.ObjectKey(projectID, name)] = append([]byte(nil), data...)
	return nil
}

// Get implements document.Archive.
func (a *Archive) Get(_ context.Context, projectID, name string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[document.ObjectKey(projectID, name)]
	if !ok {
		return nil, document.ErrNotArchived
	}
	return data, nil
}

// Keys lists the stored object keys.
func (a *Archive) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]string, 0, len(a.objects))
	for k := range a.objects {
		keys = append(keys, k)
	}
	return keys
}

var _ document.Archive = (*Archive)(nil)
