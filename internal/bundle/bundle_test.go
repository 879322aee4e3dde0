package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwmikolajek/pinea/internal/domain"
)

func TestPageEntryName(t *testing.T) {
	assert.Equal(t, "report_page_001.jpg", PageEntryName("report", 1))
	assert.Equal(t, "report_page_042.jpg", PageEntryName("report", 42))
	assert.Equal(t, "report_page_999.jpg", PageEntryName("report", 999))
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "report_pages.zip", ArchiveName("report"))
}

func TestPagesNamingIsUniqueAndOrdered(t *testing.T) {
	pages := make([]*domain.ExtractedPage, 0, 12)
	for i := 1; i <= 12; i++ {
		pages = append(pages, &domain.ExtractedPage{
			PageNumber: i,
			Data:       []byte(fmt.Sprintf("payload-%d", i)),
		})
	}

	data, err := Pages("scan", pages)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 12)

	seen := map[string]bool{}
	for i, f := range zr.File {
		assert.False(t, seen[f.Name], "colliding entry name %s", f.Name)
		seen[f.Name] = true
		assert.Equal(t, PageEntryName("scan", i+1), f.Name)

		rc, err := f.Open()
		require.NoError(t, err)
		payload, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("payload-%d", i+1), string(payload))
	}
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
