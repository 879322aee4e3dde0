// Package ingest turns user-supplied files into SourceImage items: it
// enforces the media-type allow-list and the per-file size ceiling, spools a
// preview copy per accepted item, and resolves pixel dimensions.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	// Register the decoders backing dimension resolution.
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/pwmikolajek/pinea/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxFileSize is the per-file ingestion ceiling.
const DefaultMaxFileSize = 10 << 20 // 10 MiB

// allowedFormats maps accepted media types to normalized format names.
var allowedFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
}

// File is one candidate input, already read into memory by the caller.
type File struct {
	Name string
	Data []byte
}

// Rejection explains why a candidate file did not enter the sequence.
type Rejection struct {
	Filename string
	Reason   string
}

// Result reports the outcome of a batch ingestion. Ingestion is per-item:
// valid files are accepted even when siblings in the same batch are rejected.
type Result struct {
	Accepted []*domain.SourceImage
	Rejected []Rejection
}

// Config holds ingestor settings.
type Config struct {
	// MaxFileSize is the per-file byte ceiling. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// PreviewDir is where preview copies are spooled. Empty disables spooling.
	PreviewDir string
	// ResolveLimit bounds concurrent dimension resolution. Zero means 4.
	ResolveLimit int
}

// Ingestor validates candidate files and produces SourceImage items.
type Ingestor struct {
	config Config
}

// NewIngestor returns an Ingestor with the given settings.
func NewIngestor(config Config) *Ingestor {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if config.ResolveLimit <= 0 {
		config.ResolveLimit = 4
	}
	return &Ingestor{config: config}
}

// Ingest validates each candidate, spools previews for accepted items, and
// resolves their dimensions. A batch never fails as a whole: each file is
// accepted or rejected on its own, including files that sniff as an allowed
// type but whose payload turns out to be undecodable.
func (in *Ingestor) Ingest(ctx context.Context, batch []File) Result {
	var res Result
	for _, f := range batch {
		img, rej := in.ingestOne(f)
		if rej != nil {
			slog.Info("Rejected file at ingestion.", "filename", f.Name, "reason", rej.Reason)
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		res.Accepted = append(res.Accepted, img)
	}

	// Dimension resolution is per item too: a corrupt body only rejects its
	// own file, never the siblings in the batch.
	resolveErrs := make([]error, len(res.Accepted))
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(in.config.ResolveLimit)
	for i, img := range res.Accepted {
		eg.Go(func() error {
			resolveErrs[i] = resolveOne(img)
			return nil
		})
	}
	_ = eg.Wait()

	kept := make([]*domain.SourceImage, 0, len(res.Accepted))
	for i, img := range res.Accepted {
		if err := resolveErrs[i]; err != nil {
			reason := "cannot decode image payload"
			var perr *domain.PipelineError
			if errors.As(err, &perr) && perr.Err != nil {
				reason = fmt.Sprintf("cannot decode image payload: %v", perr.Err)
			}
			slog.Info("Rejected file at ingestion.", "filename", img.Filename, "reason", reason)
			img.Release()
			res.Rejected = append(res.Rejected, Rejection{Filename: img.Filename, Reason: reason})
			continue
		}
		kept = append(kept, img)
	}
	res.Accepted = kept
	return res
}

func (in *Ingestor) ingestOne(f File) (*domain.SourceImage, *Rejection) {
	if int64(len(f.Data)) > in.config.MaxFileSize {
		return nil, &Rejection{
			Filename: f.Name,
			Reason:   fmt.Sprintf("file exceeds the %d byte size limit", in.config.MaxFileSize),
		}
	}
	mediaType := detectMediaType(f.Data)
	format, ok := allowedFormats[mediaType]
	if !ok {
		return nil, &Rejection{
			Filename: f.Name,
			Reason:   fmt.Sprintf("media type %s is not allowed, expected JPEG or PNG", mediaType),
		}
	}

	img := &domain.SourceImage{
		ID:       uuid.NewString(),
		Filename: f.Name,
		Format:   format,
		Data:     f.Data,
		Size:     int64(len(f.Data)),
	}
	if in.config.PreviewDir != "" {
		previewPath := filepath.Join(in.config.PreviewDir, img.ID+"."+format)
		if err := os.WriteFile(previewPath, f.Data, 0o644); err != nil {
			slog.Warn("Failed to spool preview copy.", "filename", f.Name, "error", err)
		} else {
			img.SetPreviewPath(previewPath)
		}
	}
	return img, nil
}

// ResolveDimensions fills in pixel width and height for every unresolved
// item. Items are independent, so resolution runs concurrently with a bounded
// group. An undecodable payload fails the whole call, naming the item.
func (in *Ingestor) ResolveDimensions(ctx context.Context, images []*domain.SourceImage) error {
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(in.config.ResolveLimit)
	for _, img := range images {
		if img.Resolved() {
			continue
		}
		eg.Go(func() error {
			return resolveOne(img)
		})
	}
	return eg.Wait()
}

func resolveOne(img *domain.SourceImage) error {
	if img.Resolved() {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return domain.DecodeError(img.ID, fmt.Sprintf("cannot decode %s", img.Filename), err)
	}
	img.Width = cfg.Width
	img.Height = cfg.Height
	return nil
}

// detectMediaType sniffs the payload's media type from its leading bytes.
// The declared filename extension is deliberately ignored.
func detectMediaType(data []byte) string {
	return http.DetectContentType(data)
}
