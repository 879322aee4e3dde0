package domain

import (
	"os"
	"sync"
	"time"
)

// SourceImage is one user-supplied raster input to the composer. Width and
// Height start at zero and are filled in by the ingest package's dimension
// resolution pass; a zero value means "not resolved yet".
type SourceImage struct {
	ID       string
	Filename string
	// Format is the normalized image format name, "jpeg" or "png".
	Format string
	Data   []byte
	Width  int
	Height int
	Size   int64

	previewPath string
	releaseOnce sync.Once
}

// ItemID returns the stable per-session identifier of the image.
func (s *SourceImage) ItemID() string { return s.ID }

// Resolved reports whether the image's pixel dimensions are known.
func (s *SourceImage) Resolved() bool { return s.Width > 0 && s.Height > 0 }

// SetPreviewPath records the spooled preview file owned by this item.
func (s *SourceImage) SetPreviewPath(path string) { s.previewPath = path }

// PreviewPath returns the spooled preview file path, if any.
func (s *SourceImage) PreviewPath() string { return s.previewPath }

// Release frees the item's transient preview resource. Releasing twice, or
// releasing an item that never had a preview, is a no-op.
func (s *SourceImage) Release() {
	s.releaseOnce.Do(func() {
		if s.previewPath != "" {
			_ = os.Remove(s.previewPath)
			s.previewPath = ""
		}
	})
}

// ExtractedPage is one rendered page of a source document.
type ExtractedPage struct {
	// PageNumber is 1-based and matches the source document's page order.
	PageNumber int
	// Data is the JPEG-encoded raster.
	Data   []byte
	Width  int
	Height int

	id string
}

// ItemID returns the page's identity within a result sequence.
func (p *ExtractedPage) ItemID() string { return p.id }

// SetID assigns the page's sequence identity. Called once by the extractor.
func (p *ExtractedPage) SetID(id string) { p.id = id }

// TotalSize returns the summed encoded payload size of a result set in bytes.
func TotalSize(pages []*ExtractedPage) int64 {
	var total int64
	for _, p := range pages {
		total += int64(len(p.Data))
	}
	return total
}

// DocumentRecord is the metadata record kept for a published document.
type DocumentRecord struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	ByteSize         int64     `firestore:"byteSize,omitempty"`
	DownloadURL      string    `firestore:"downloadUrl,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}
