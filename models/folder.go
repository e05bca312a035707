package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyFolderName is returned when creating a folder with a blank name.
var ErrEmptyFolderName = errors.New("folder name cannot be empty")

// Folder represents the folders table schema. ParentID is empty for
// folders at the root of a user's tree (stored as NULL).
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks folder fields before insertion
func (f *Folder) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyFolderName
	}
	if f.OwnerID == "" {
		return errors.New("folder owner cannot be empty")
	}
	return nil
}

// CreateFolder inserts a new folder under parentID (empty = root) for ownerID.
func CreateFolder(name, parentID, ownerID string) (*Folder, error) {
	folder := &Folder{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	if err := folder.Validate(); err != nil {
		return nil, err
	}

	query := `
	INSERT INTO folders (id, name, parent_id, owner_id, created_at)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(query, folder.ID, folder.Name, nullableID(folder.ParentID), folder.OwnerID, folder.CreatedAt); err != nil {
		return nil, err
	}

	return folder, nil
}

// GetChildFolders lists the folders directly under parentID (empty = root)
// owned by ownerID, ordered by name.
func GetChildFolders(ownerID, parentID string) ([]Folder, error) {
	query := `
	SELECT id, name, COALESCE(parent_id, ''), owner_id, created_at
	FROM folders
	WHERE owner_id = ? AND parent_id IS ?
	ORDER BY name
	`
	rows, err := db.Query(query, ownerID, nullableID(parentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var folder Folder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.ParentID, &folder.OwnerID, &folder.CreatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return folders, nil
}

// GetFolderByID retrieves a folder by id, or nil when not found.
func GetFolderByID(id string) (*Folder, error) {
	query := `
	SELECT id, name, COALESCE(parent_id, ''), owner_id, created_at
	FROM folders
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

	var folder Folder
	if err := rows.Scan(&folder.ID, &folder.Name, &folder.ParentID, &folder.OwnerID, &folder.CreatedAt); err != nil {
		return nil, err
	}
	return &folder, nil
}

// HasChildFolders reports whether any folder lists folderID as its parent.
func HasChildFolders(folderID string) (bool, error) {
	return existsChecker(`SELECT 1 FROM folders WHERE parent_id = ? LIMIT 1`, folderID)
}

// DeleteFolder removes a folder row. Emptiness checks are the caller's
// responsibility; the check and the delete are separate round trips.
func DeleteFolder(id string) error {
	_, err := db.Exec(`DELETE FROM folders WHERE id = ?`, id)
	return err
}

// CountFolders returns the total number of folders
func CountFolders() (int64, error) {
	return CountRecords(`SELECT COUNT(*) FROM folders`)
}
