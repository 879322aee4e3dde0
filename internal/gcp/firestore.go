package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pwmikolajek/pinea/internal/domain"
	"github.com/pwmikolajek/pinea/internal/library"
	"google.golang.org/api/iterator"
)

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// recordDoc is the Firestore shape of a published-document record.
type recordDoc struct {
	FileHash         string    `firestore:"fileHash,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	ByteSize         int64     `firestore:"byteSize,omitempty"`
	DownloadURL      string    `firestore:"downloadUrl,omitempty"`
	ObjectName       string    `firestore:"objectName,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}

// DocumentRecords keeps published-document metadata in a Firestore
// collection. It implements library.RecordStore.
type DocumentRecords struct {
	client     *firestore.Client
	collection string
}

// NewDocumentRecords creates a Firestore-backed record store.
func NewDocumentRecords(ctx context.Context, projectID, collection string) (*DocumentRecords, error) {
	client, err := NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = "documents"
	}
	return &DocumentRecords{client: client, collection: collection}, nil
}

// FindByHash returns the record with the given content hash, or nil if none
// exists.
func (r *DocumentRecords) FindByHash(ctx context.Context, fileHash string) (*library.StoredDocument, error) {
	docs, err := r.client.Collection(r.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return snapshotToStored(docs[0])
}

// Save creates a new record and returns its identifier.
func (r *DocumentRecords) Save(ctx context.Context, objectName string, rec domain.DocumentRecord) (string, error) {
	doc := recordDoc{
		FileHash:         rec.FileHash,
		OriginalFilename: rec.OriginalFilename,
		PageCount:        rec.PageCount,
		ByteSize:         rec.ByteSize,
		DownloadURL:      rec.DownloadURL,
		ObjectName:       objectName,
		CreatedAt:        rec.CreatedAt,
	}
	ref, _, err := r.client.Collection(r.collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document record: %w", err)
	}
	return ref.ID, nil
}

// Get loads a record by identifier.
func (r *DocumentRecords) Get(ctx context.Context, id string) (*library.StoredDocument, error) {
	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document record %s: %w", id, err)
	}
	return snapshotToStored(snap)
}

// List returns every record in the collection, newest first.
func (r *DocumentRecords) List(ctx context.Context) ([]library.StoredDocument, error) {
	it := r.client.Collection(r.collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	var out []library.StoredDocument
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list document records: %w", err)
		}
		stored, err := snapshotToStored(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *stored)
	}
	return out, nil
}

// Delete removes a record by identifier.
func (r *DocumentRecords) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(r.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document record %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *DocumentRecords) Close() error {
	return r.client.Close()
}

func snapshotToStored(snap *firestore.DocumentSnapshot) (*library.StoredDocument, error) {
	var doc recordDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document record %s: %w", snap.Ref.ID, err)
	}
	return &library.StoredDocument{
		ID:         snap.Ref.ID,
		ObjectName: doc.ObjectName,
		Record: domain.DocumentRecord{
			FileHash:         doc.FileHash,
			OriginalFilename: doc.OriginalFilename,
			PageCount:        doc.PageCount,
			ByteSize:         doc.ByteSize,
			DownloadURL:      doc.DownloadURL,
			CreatedAt:        doc.CreatedAt,
		},
	}, nil
}
