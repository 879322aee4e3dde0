// Package library publishes finished documents: content-hash, duplicate
// lookup, blob upload, metadata record. The core hands over a byte buffer and
// gets back an addressable URL; how storage is implemented lives behind the
// BlobStore and RecordStore interfaces.
package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/pwmikolajek/pinea/internal/domain"
)

// BlobStore uploads and deletes binary objects, returning addressable URLs.
type BlobStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, objectName string) error
}

// StoredDocument is a metadata record together with its store identity.
type StoredDocument struct {
	ID         string
	ObjectName string
	Record     domain.DocumentRecord
}

// RecordStore keeps metadata records for published documents.
type RecordStore interface {
	FindByHash(ctx context.Context, fileHash string) (*StoredDocument, error)
	Save(ctx context.Context, objectName string, rec domain.DocumentRecord) (id string, err error)
	Get(ctx context.Context, id string) (*StoredDocument, error)
	List(ctx context.Context) ([]StoredDocument, error)
	Delete(ctx context.Context, id string) error
}

// Publisher runs the publish pipeline.
type Publisher struct {
	blobs   BlobStore
	records RecordStore
}

// NewPublisher wires a Publisher from its stores.
func NewPublisher(blobs BlobStore, records RecordStore) *Publisher {
	return &Publisher{blobs: blobs, records: records}
}

// Publish uploads a finished document and records its metadata. A document
// whose content hash is already recorded is not uploaded again; the existing
// record is returned instead.
func (p *Publisher) Publish(ctx context.Context, filename string, data []byte, pageCount int) (*StoredDocument, error) {
	fileHash := hashBytes(data)
	logCtx := slog.With("filename", filename, "fileHash", fileHash)

	existing, err := p.records.FindByHash(ctx, fileHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if existing != nil {
		logCtx.Info("Duplicate document detected. Skipping upload.", "existingId", existing.ID)
		return existing, nil
	}

	objectName := fmt.Sprintf("%s/%s", fileHash, filename)
	url, err := p.blobs.Upload(ctx, objectName, "application/pdf", data)
	if err != nil {
		logCtx.Error("Upload failed.", "error", err)
		return nil, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	rec := domain.DocumentRecord{
		FileHash:         fileHash,
		OriginalFilename: filename,
		PageCount:        pageCount,
		ByteSize:         int64(len(data)),
		DownloadURL:      url,
		CreatedAt:        time.Now(),
	}
	id, err := p.records.Save(ctx, objectName, rec)
	if err != nil {
		// Roll the orphaned blob back so the store does not accumulate
		// unreferenced objects.
		if delErr := p.blobs.Delete(ctx, objectName); delErr != nil {
			logCtx.Error("CRITICAL: Failed to delete orphaned blob after record save failure.",
				"objectName", objectName, "deleteError", delErr)
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	logCtx.Info("Document published.", "documentId", id, "url", url)
	return &StoredDocument{ID: id, ObjectName: objectName, Record: rec}, nil
}

// Unpublish removes a published document's blob and record.
func (p *Publisher) Unpublish(ctx context.Context, id string) error {
	doc, err := p.records.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load document record %s: %w", id, err)
	}
	if err := p.blobs.Delete(ctx, doc.ObjectName); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", doc.ObjectName, err)
	}
	if err := p.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record %s: %w", id, err)
	}
	slog.Info("Document unpublished.", "documentId", id)
	return nil
}

// List returns all published document records.
func (p *Publisher) List(ctx context.Context) ([]StoredDocument, error) {
	return p.records.List(ctx)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
