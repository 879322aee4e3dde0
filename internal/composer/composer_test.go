package composer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwmikolajek/pinea/internal/domain"
	"github.com/pwmikolajek/pinea/internal/ingest"
)

func sourceImage(t *testing.T, name string, w, h int) *domain.SourceImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &domain.SourceImage{
		ID:       uuid.NewString(),
		Filename: name,
		Format:   "png",
		Data:     buf.Bytes(),
		Size:     int64(buf.Len()),
	}
}

func newComposer() *Composer {
	return New(ingest.NewIngestor(ingest.Config{}))
}

func TestComposeEmptySequence(t *testing.T) {
	_, err := newComposer().Compose(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptySequence)
}

func TestComposePageOrderAndDimensions(t *testing.T) {
	// Distinct dimensions per input let page order be verified through the
	// output's page sizes.
	images := []*domain.SourceImage{
		sourceImage(t, "first.png", 100, 200),
		sourceImage(t, "second.png", 300, 150),
		sourceImage(t, "third.png", 50, 75),
	}

	doc, err := newComposer().Compose(context.Background(), images)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount())

	dims, err := api.PageDims(doc.Reader(), nil)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	for i, want := range [][2]float64{{100, 200}, {300, 150}, {50, 75}} {
		assert.InDelta(t, want[0], dims[i].Width, 1.0, "page %d width", i+1)
		assert.InDelta(t, want[1], dims[i].Height, 1.0, "page %d height", i+1)
	}
}

func TestComposeResolvesPendingDimensions(t *testing.T) {
	img := sourceImage(t, "pending.png", 64, 32)
	require.False(t, img.Resolved())

	doc, err := newComposer().Compose(context.Background(), []*domain.SourceImage{img})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 32, img.Height)
}

func TestComposeFailsAtomically(t *testing.T) {
	// Image 3 of 5 is corrupt: no document comes back, not even a partial
	// one, and the error names the offending image.
	images := []*domain.SourceImage{
		sourceImage(t, "1.png", 10, 10),
		sourceImage(t, "2.png", 20, 20),
		{ID: "corrupt-id", Filename: "3.png", Format: "png", Data: []byte("garbage"), Width: 30, Height: 30},
		sourceImage(t, "4.png", 40, 40),
		sourceImage(t, "5.png", 50, 50),
	}

	doc, err := newComposer().Compose(context.Background(), images)
	assert.Nil(t, doc)
	var perr *domain.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.ErrorTypeDecode, perr.Type)
	assert.Equal(t, "corrupt-id", perr.ItemID)
}

func TestComposeDoesNotMutateInput(t *testing.T) {
	images := []*domain.SourceImage{
		sourceImage(t, "a.png", 10, 10),
		sourceImage(t, "b.png", 20, 20),
	}
	before := []string{images[0].ID, images[1].ID}

	_, err := newComposer().Compose(context.Background(), images)
	require.NoError(t, err)
	assert.Equal(t, before, []string{images[0].ID, images[1].ID})
	assert.Len(t, images, 2)
}

func TestDocumentSpoolAndRelease(t *testing.T) {
	doc, err := newComposer().Compose(context.Background(), []*domain.SourceImage{
		sourceImage(t, "a.png", 10, 10),
	})
	require.NoError(t, err)

	path, err := doc.SpoolPath()
	require.NoError(t, err)
	again, err := doc.SpoolPath()
	require.NoError(t, err)
	assert.Equal(t, path, again)

	doc.Release()
	assert.NoFileExists(t, path)
	doc.Release() // safe no-op
}
