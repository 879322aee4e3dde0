// Package session owns the in-memory state of one working session: the
// ordered image list, the latest composed document, and the latest extraction
// result set. Nothing is shared across sessions.
package session

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/pwmikolajek/pinea/internal/composer"
	"github.com/pwmikolajek/pinea/internal/domain"
	"github.com/pwmikolajek/pinea/internal/extractor"
	"github.com/pwmikolajek/pinea/internal/ingest"
	"github.com/pwmikolajek/pinea/internal/sequence"
)

// PageExtractor renders a document into an ordered page-raster sequence.
// *extractor.Extractor is the production implementation.
type PageExtractor interface {
	Extract(ctx context.Context, pdfData []byte, opts extractor.Options) ([]*domain.ExtractedPage, error)
}

// Session is the exclusive owner of one tab-equivalent's state.
type Session struct {
	Images *sequence.List[*domain.SourceImage]

	ingestor  *ingest.Ingestor
	composer  *composer.Composer
	extractor PageExtractor

	tempDir string

	mu            sync.Mutex
	lastDoc       *composer.Document
	pages         *sequence.List[*domain.ExtractedPage]
	cancelExtract context.CancelFunc
	extractGen    uint64
}

// New creates a session with its own preview spool directory.
func New() (*Session, error) {
	tempDir, err := os.MkdirTemp("", "pinea-session-*")
	if err != nil {
		return nil, err
	}
	ing := ingest.NewIngestor(ingest.Config{PreviewDir: tempDir})
	s := &Session{
		Images:    sequence.NewList[*domain.SourceImage](),
		ingestor:  ing,
		composer:  composer.New(ing),
		extractor: extractor.New(),
		tempDir:   tempDir,
	}
	slog.Info("Session created.", "previewDir", tempDir)
	return s, nil
}

// Ingest validates a batch of candidate files and appends the accepted ones
// to the image sequence. Rejections are reported per item; they never fail
// the batch.
func (s *Session) Ingest(ctx context.Context, batch []ingest.File) ingest.Result {
	res := s.ingestor.Ingest(ctx, batch)
	s.Images.Append(res.Accepted...)
	return res
}

// ComposeDocument builds a PDF from a snapshot of the current image sequence.
// Mutations made to the sequence while the export runs do not affect it. On
// success the previous document, if any, is released and replaced.
func (s *Session) ComposeDocument(ctx context.Context) (*composer.Document, error) {
	snapshot := s.Images.Items()
	doc, err := s.composer.Compose(ctx, snapshot)
	if err != nil {
		// The previous successful document stays untouched.
		return nil, err
	}
	s.mu.Lock()
	if s.lastDoc != nil {
		s.lastDoc.Release()
	}
	s.lastDoc = doc
	s.mu.Unlock()
	return doc, nil
}

// Document returns the most recently composed document, if any.
func (s *Session) Document() *composer.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDoc
}

// ExtractPages runs a full-document extraction pass. Last request wins: a
// pass still in flight when a new one starts is cancelled at its next page
// boundary and its output is discarded with ErrSuperseded. A new result set
// fully replaces the previous one; a failed pass leaves it untouched.
func (s *Session) ExtractPages(ctx context.Context, pdfData []byte, opts extractor.Options) ([]*domain.ExtractedPage, error) {
	s.mu.Lock()
	if s.cancelExtract != nil {
		s.cancelExtract()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelExtract = cancel
	s.extractGen++
	gen := s.extractGen
	s.mu.Unlock()
	defer cancel()

	pages, err := s.extractor.Extract(runCtx, pdfData, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.extractGen {
		// A newer request superseded this pass; its result is what the
		// caller sees.
		return nil, domain.ErrSuperseded
	}
	s.cancelExtract = nil
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if runCtx.Err() != nil {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}
	// The new result set fully replaces the old one, as an ordered list so
	// individual page results can be removed or reordered before bundling.
	list := sequence.NewList[*domain.ExtractedPage]()
	list.Append(pages...)
	s.pages = list
	return pages, nil
}

// Pages returns the current extraction result set in order.
func (s *Session) Pages() []*domain.ExtractedPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages == nil {
		return nil
	}
	return s.pages.Items()
}

// RemovePage drops one page result from the current set. Absent ids are
// no-ops.
func (s *Session) RemovePage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages != nil {
		s.pages.Remove(id)
	}
}

// ClearPages drops the current extraction result set.
func (s *Session) ClearPages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = nil
}

// Close releases everything the session owns: per-item previews, the latest
// composed document, and the spool directory. Closing twice is safe.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancelExtract != nil {
		s.cancelExtract()
		s.cancelExtract = nil
	}
	if s.lastDoc != nil {
		s.lastDoc.Release()
		s.lastDoc = nil
	}
	s.pages = nil
	s.mu.Unlock()

	s.Images.Clear()
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
}
