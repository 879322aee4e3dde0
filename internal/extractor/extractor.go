// Package extractor renders every page of a PDF into a JPEG raster, in page
// order, at a caller-chosen scale and quality.
package extractor

import (
	"bytes"
	"context"
	"image/jpeg"
	"log/slog"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
	"github.com/pwmikolajek/pinea/internal/domain"
)

const (
	// DefaultScale is the render scale applied when Options.Scale is zero.
	DefaultScale = 1.5
	// DefaultQuality is the JPEG quality applied when Options.Quality is zero.
	DefaultQuality = 0.8

	// The renderer's native resolution. Scale 1.0 renders one pixel per point.
	baseDPI = 72
)

// Options control a full-document extraction pass.
type Options struct {
	// Scale is the raster scale factor relative to the page's native size.
	Scale float64
	// Quality is the JPEG encoding quality in (0, 1].
	Quality float64
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality > 1 {
		o.Quality = 1
	}
	return o
}

// jpegQuality maps the [0,1] quality knob onto libjpeg's 1..100 scale.
func (o Options) jpegQuality() int {
	q := int(o.Quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return q
}

// Extractor renders PDF pages to rasters.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract renders every page of the document into a JPEG, strictly one page
// at a time. The rendering context is an exclusive resource, so pages are
// never rendered concurrently; sequential processing also bounds peak memory
// to one page.
//
// A render failure on any page aborts the pass: pages rendered before the
// failure are discarded, never returned as a partial result. Cancelling ctx
// abandons the pass at the next page boundary with ctx's error.
func (e *Extractor) Extract(ctx context.Context, pdfData []byte, opts Options) ([]*domain.ExtractedPage, error) {
	opts = opts.withDefaults()
	logCtx := slog.With("scale", opts.Scale, "quality", opts.Quality)

	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, domain.DecodeError("", "cannot open document", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.DecodeError("", "document has no pages", nil)
	}
	logCtx.Info("Starting page extraction.", "pageCount", pageCount)

	quality := opts.jpegQuality()
	pages := make([]*domain.ExtractedPage, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		pageNumber := i + 1
		if err := ctx.Err(); err != nil {
			logCtx.Info("Extraction abandoned at page boundary.", "pageNumber", pageNumber)
			return nil, err
		}

		img, err := doc.ImageDPI(i, baseDPI*opts.Scale)
		if err != nil {
			logCtx.Error("Page failed to render.", "pageNumber", pageNumber, "error", err)
			return nil, domain.RenderError(pageNumber, "failed to render page", err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, domain.RenderError(pageNumber, "failed to encode page raster", err)
		}

		bounds := img.Bounds()
		page := &domain.ExtractedPage{
			PageNumber: pageNumber,
			Data:       buf.Bytes(),
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		}
		page.SetID(uuid.NewString())
		pages = append(pages, page)
	}

	logCtx.Info("Page extraction complete.", "pageCount", len(pages), "totalBytes", domain.TotalSize(pages))
	return pages, nil
}
