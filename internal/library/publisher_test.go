package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwmikolajek/pinea/internal/domain"
)

type fakeBlobStore struct {
	objects map[string][]byte
	fail    bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	if f.fail {
		return "", errors.New("upload refused")
	}
	f.objects[objectName] = data
	return "https://blobs.example/" + objectName, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, objectName string) error {
	delete(f.objects, objectName)
	return nil
}

type fakeRecordStore struct {
	records  map[string]StoredDocument
	nextID   int
	failSave bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: map[string]StoredDocument{}}
}

func (f *fakeRecordStore) FindByHash(ctx context.Context, fileHash string) (*StoredDocument, error) {
	for _, doc := range f.records {
		if doc.Record.FileHash == fileHash {
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordStore) Save(ctx context.Context, objectName string, rec domain.DocumentRecord) (string, error) {
	if f.failSave {
		return "", errors.New("record store down")
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.records[id] = StoredDocument{ID: id, ObjectName: objectName, Record: rec}
	return id, nil
}

func (f *fakeRecordStore) Get(ctx context.Context, id string) (*StoredDocument, error) {
	doc, ok := f.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &doc, nil
}

func (f *fakeRecordStore) List(ctx context.Context) ([]StoredDocument, error) {
	var out []StoredDocument
	for _, doc := range f.records {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeRecordStore) Delete(ctx context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func TestPublish(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	p := NewPublisher(blobs, records)

	stored, err := p.Publish(context.Background(), "gallery.pdf", []byte("%PDF-1.7 fake"), 3)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "gallery.pdf", stored.Record.OriginalFilename)
	assert.Equal(t, 3, stored.Record.PageCount)
	assert.Equal(t, int64(13), stored.Record.ByteSize)
	assert.Contains(t, stored.Record.DownloadURL, stored.Record.FileHash)
	assert.Len(t, blobs.objects, 1)
}

func TestPublishSkipsDuplicates(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	p := NewPublisher(blobs, records)

	data := []byte("%PDF-1.7 same content")
	first, err := p.Publish(context.Background(), "one.pdf", data, 1)
	require.NoError(t, err)

	// Same bytes under another name: no second upload, no second record.
	second, err := p.Publish(context.Background(), "two.pdf", data, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, blobs.objects, 1)
	assert.Len(t, records.records, 1)
}

func TestPublishRollsBackBlobOnRecordFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	records.failSave = true
	p := NewPublisher(blobs, records)

	_, err := p.Publish(context.Background(), "doomed.pdf", []byte("%PDF-1.7 x"), 1)
	require.Error(t, err)
	assert.Empty(t, blobs.objects)
}

func TestUnpublish(t *testing.T) {
	blobs := newFakeBlobStore()
	records := newFakeRecordStore()
	p := NewPublisher(blobs, records)

	stored, err := p.Publish(context.Background(), "gone.pdf", []byte("%PDF-1.7 y"), 1)
	require.NoError(t, err)

	require.NoError(t, p.Unpublish(context.Background(), stored.ID))
	assert.Empty(t, blobs.objects)
	assert.Empty(t, records.records)

	docs, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
