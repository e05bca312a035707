package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// ArchiveEntry describes one entry inside an uploaded archive.
type ArchiveEntry struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	IsDir     bool   `json:"is_dir"`
}

// IsArchiveFilename reports whether a filename looks like a listable archive.
func IsArchiveFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".cbz", ".rar", ".cbr":
		return true
	}
	return false
}

// ListArchiveEntries lists the contents of a zip or rar archive without
// extracting it. The filename extension selects the decoder.
func ListArchiveEntries(name string, data []byte) ([]ArchiveEntry, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".cbz":
		return listZipEntries(data)
	case ".rar", ".cbr":
		return listRarEntries(data)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", name)
	}
}

func listZipEntries(data []byte) ([]ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	entries := make([]ArchiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		entries = append(entries, ArchiveEntry{
			Name:      file.Name,
			SizeBytes: int64(file.UncompressedSize64),
			IsDir:     file.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

func listRarEntries(data []byte) ([]ArchiveEntry, error) {
	reader, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open rar archive: %w", err)
	}

	var entries []ArchiveEntry
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rar entry: %w", err)
		}
		entries = append(entries, ArchiveEntry{
			Name:      header.Name,
			SizeBytes: header.UnPackedSize,
			IsDir:     header.IsDir,
		})
	}
	return entries, nil
}
