// Package composer assembles an ordered sequence of source images into a
// single PDF: one full-bleed page per image, each page sized exactly to its
// image's pixel dimensions.
package composer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pwmikolajek/pinea/internal/domain"
	"github.com/pwmikolajek/pinea/internal/ingest"
)

// Composer builds PDF documents from image sequences.
type Composer struct {
	conf     *model.Configuration
	ingestor *ingest.Ingestor
}

// New returns a Composer. The ingestor is used to resolve any dimensions
// still pending at export time.
func New(ingestor *ingest.Ingestor) *Composer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Composer{conf: conf, ingestor: ingestor}
}

// Compose builds one document from the given snapshot of the image sequence.
// Pages come out in snapshot order; the snapshot is not mutated. If any image
// cannot be decoded the whole export fails and no partial document is
// returned; the error names the failing image.
func (c *Composer) Compose(ctx context.Context, images []*domain.SourceImage) (*Document, error) {
	if len(images) == 0 {
		return nil, domain.ErrEmptySequence
	}
	logCtx := slog.With("imageCount", len(images))
	logCtx.Info("Starting document composition.")

	// Dimension resolution is a per-item precondition for encoding.
	if err := c.ingestor.ResolveDimensions(ctx, images); err != nil {
		return nil, err
	}

	// Fully decode each payload up front so a corrupt image is attributed to
	// its id instead of surfacing as an opaque encoder failure mid-document.
	readers := make([]io.Reader, 0, len(images))
	for _, img := range images {
		if _, _, err := image.Decode(bytes.NewReader(img.Data)); err != nil {
			logCtx.Error("Image failed to decode.", "itemId", img.ID, "filename", img.Filename, "error", err)
			return nil, domain.DecodeError(img.ID, fmt.Sprintf("cannot decode %s", img.Filename), err)
		}
		readers = append(readers, bytes.NewReader(img.Data))
	}

	// A nil import configuration gives pdfcpu's natural-size behavior: each
	// page takes its dimensions from its image, one pixel per point.
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, nil, c.conf); err != nil {
		logCtx.Error("Document assembly failed.", "error", err)
		return nil, domain.EncodeError("failed to assemble document", err)
	}

	pageCount, err := api.PageCount(bytes.NewReader(buf.Bytes()), c.conf)
	if err != nil {
		return nil, domain.EncodeError("failed to verify assembled document", err)
	}
	if pageCount != len(images) {
		return nil, domain.EncodeError(
			fmt.Sprintf("assembled document has %d pages, expected %d", pageCount, len(images)), nil)
	}

	logCtx.Info("Document composition complete.", "pageCount", pageCount, "byteSize", buf.Len())
	return &Document{
		data:      buf.Bytes(),
		pageCount: pageCount,
		createdAt: time.Now(),
	}, nil
}
