// Package bundle packages a sequence of independently-downloadable artifacts
// into a single zip archive for one-shot download.
package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/pwmikolajek/pinea/internal/domain"
)

// Entry is one named payload destined for an archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive builds a zip archive from the given entries, preserving their
// order. Any failure aborts the whole operation; no partial archive is
// returned.
func Archive(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			zw.Close()
			return nil, domain.EncodeError(fmt.Sprintf("failed to create archive entry %s", e.Name), err)
		}
		if _, err := w.Write(e.Data); err != nil {
			zw.Close()
			return nil, domain.EncodeError(fmt.Sprintf("failed to write archive entry %s", e.Name), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, domain.EncodeError("failed to finalize archive", err)
	}
	return buf.Bytes(), nil
}

// Pages bundles an extraction result set, naming each entry from the page
// number and the caller's base name. Three-digit zero padding keeps names
// unique and sortable for documents of up to 999 pages.
func Pages(baseName string, pages []*domain.ExtractedPage) ([]byte, error) {
	entries := make([]Entry, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, Entry{
			Name: PageEntryName(baseName, p.PageNumber),
			Data: p.Data,
		})
	}
	return Archive(entries)
}

// PageEntryName returns the archive entry name for one page raster.
func PageEntryName(baseName string, pageNumber int) string {
	return fmt.Sprintf("%s_page_%03d.jpg", baseName, pageNumber)
}

// ArchiveName returns the download name for a bundled result set.
func ArchiveName(baseName string) string {
	return baseName + "_pages.zip"
}
