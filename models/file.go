package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord represents the files table schema. Filename is the display
// name (truncated for long names), FullName the original upload name and
// BlobPath the locator into blob storage. FolderID is empty for files at
// the root (stored as NULL).
type FileRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FullName    string    `json:"full_name"`
	BlobPath    string    `json:"blob_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	FolderID    string    `json:"folder_id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateFileRecord inserts metadata for an uploaded blob.
func CreateFileRecord(record *FileRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
	INSERT INTO files (id, filename, full_name, blob_path, content_type, size_bytes, folder_id, owner_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		record.ID, record.Filename, record.FullName, record.BlobPath, record.ContentType,
		record.SizeBytes, nullableID(record.FolderID), record.OwnerID, record.CreatedAt, record.UpdatedAt)
	return err
}

// GetFilesInFolder lists the files in folderID (empty = root) owned by
// ownerID, newest first.
func GetFilesInFolder(ownerID, folderID string) ([]FileRecord, error) {
	query := `
	SELECT id, filename, full_name, blob_path, content_type, size_bytes, COALESCE(folder_id, ''), owner_id, created_at, updated_at
	FROM files
	WHERE owner_id = ? AND folder_id IS ?
	ORDER BY created_at DESC
	`
	rows, err := db.Query(query, ownerID, nullableID(folderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.Filename, &f.FullName, &f.BlobPath, &f.ContentType,
			&f.SizeBytes, &f.FolderID, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}

// GetFileByID retrieves a file record by id, or nil when not found.
func GetFileByID(id string) (*FileRecord, error) {
	query := `
	SELECT id, filename, full_name, blob_path, content_type, size_bytes, COALESCE(folder_id, ''), owner_id, created_at, updated_at
	FROM files
	WHERE id = ?
	`
	rows, err := db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var f FileRecord
	if err := rows.Scan(&f.ID, &f.Filename, &f.FullName, &f.BlobPath, &f.ContentType,
		&f.SizeBytes, &f.FolderID, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// FolderHasFiles reports whether any file record lives in folderID.
func FolderHasFiles(folderID string) (bool, error) {
	return existsChecker(`SELECT 1 FROM files WHERE folder_id = ? LIMIT 1`, folderID)
}

// DeleteFileRecord removes a file record by id.
func DeleteFileRecord(id string) error {
	_, err := db.Exec(`DELETE FROM files WHERE id = ?`, id)
	return err
}

// CountFiles returns the total number of file records
func CountFiles() (int64, error) {
	return CountRecords(`SELECT COUNT(*) FROM files`)
}

// TotalStoredBytes sums the size of all file records
func TotalStoredBytes() (int64, error) {
	var total int64
	err := db.QueryRow(`SELECT COALESCE(SUM(size_bytes), 0) FROM files`).Scan(&total)
	return total, err
}

// ListBlobPaths returns every blob path referenced by a file record.
// The orphan sweeper diffs this against blob storage contents.
func ListBlobPaths() (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT blob_path FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths[path] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}
