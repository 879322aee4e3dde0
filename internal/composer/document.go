package composer

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"
)

// Document holds a composed PDF and provides helpers for common output
// forms. Its methods are safe to call multiple times; the underlying data is
// never modified.
type Document struct {
	data      []byte
	pageCount int
	createdAt time.Time

	mu        sync.Mutex
	spoolPath string
	released  bool
}

// Bytes returns the raw PDF content.
func (d *Document) Bytes() []byte { return d.data }

// Len returns the size of the PDF in bytes.
func (d *Document) Len() int { return len(d.data) }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pageCount }

// CreatedAt returns when the document was composed.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Reader returns a reader over the PDF content, suitable for streaming
// uploads or any API that accepts an io.Reader.
func (d *Document) Reader() *bytes.Reader { return bytes.NewReader(d.data) }

// WriteTo writes the full PDF content to w. It implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (d *Document) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, d.data, perm)
}

// SpoolPath materializes the document as a temporary file and returns its
// path. Repeated calls return the same file. The file is removed by Release.
func (d *Document) SpoolPath() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spoolPath != "" {
		return d.spoolPath, nil
	}
	f, err := os.CreateTemp("", "pinea-doc-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(d.data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	d.spoolPath = f.Name()
	return d.spoolPath, nil
}

// Release frees the document's transient spool file, if one was created.
// Releasing twice is a no-op. A superseded document must be released before
// its replacement is kept, so stale handles do not accumulate.
func (d *Document) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	if d.spoolPath != "" {
		_ = os.Remove(d.spoolPath)
		d.spoolPath = ""
	}
}
