package browser

import (
	"io"

	"github.com/Harsh275110/StoreIt/filestore"
	"github.com/Harsh275110/StoreIt/models"
)

// RecordStore is the metadata capability a FolderBrowser needs. The SQLite
// implementation wraps the models package; the memory implementation backs
// demo mode and tests.
type RecordStore interface {
	// ChildFolders lists folders under parentID (empty = root) owned by
	// ownerID, ordered by name.
	ChildFolders(ownerID, parentID string) ([]models.Folder, error)

	// FilesInFolder lists files in folderID (empty = root) owned by
	// ownerID, newest first.
	FilesInFolder(ownerID, folderID string) ([]models.FileRecord, error)

	// InsertFolder creates a folder and returns it.
	InsertFolder(name, parentID, ownerID string) (*models.Folder, error)

	// InsertFile creates a file record.
	InsertFile(record *models.FileRecord) error

	// GetFolder retrieves a folder by id, or nil when not found.
	GetFolder(id string) (*models.Folder, error)

	// GetFile retrieves a file record by id, or nil when not found.
	GetFile(id string) (*models.FileRecord, error)

	// HasChildFolders reports whether any folder has folderID as parent.
	HasChildFolders(folderID string) (bool, error)

	// FolderHasFiles reports whether any file record lives in folderID.
	FolderHasFiles(folderID string) (bool, error)

	// DeleteFolder removes a folder row.
	DeleteFolder(id string) error

	// DeleteFile removes a file record row.
	DeleteFile(id string) error
}

// BlobVault is the blob storage capability a FolderBrowser needs.
type BlobVault interface {
	// Save stores blob bytes at path.
	Save(path string, reader io.Reader) error

	// Locator resolves a durable retrieval URL for the blob at path.
	Locator(path string) (string, error)

	// Delete removes the blob at path.
	Delete(path string) error
}

// SQLRecordStore implements RecordStore on top of the models package.
type SQLRecordStore struct{}

// NewSQLRecordStore creates a RecordStore backed by the SQLite database.
func NewSQLRecordStore() *SQLRecordStore {
	return &SQLRecordStore{}
}

func (s *SQLRecordStore) ChildFolders(ownerID, parentID string) ([]models.Folder, error) {
	return models.GetChildFolders(ownerID, parentID)
}

func (s *SQLRecordStore) FilesInFolder(ownerID, folderID string) ([]models.FileRecord, error) {
	return models.GetFilesInFolder(ownerID, folderID)
}

func (s *SQLRecordStore) InsertFolder(name, parentID, ownerID string) (*models.Folder, error) {
	return models.CreateFolder(name, parentID, ownerID)
}

func (s *SQLRecordStore) InsertFile(record *models.FileRecord) error {
	return models.CreateFileRecord(record)
}

func (s *SQLRecordStore) GetFolder(id string) (*models.Folder, error) {
	return models.GetFolderByID(id)
}

func (s *SQLRecordStore) GetFile(id string) (*models.FileRecord, error) {
	return models.GetFileByID(id)
}

func (s *SQLRecordStore) HasChildFolders(folderID string) (bool, error) {
	return models.HasChildFolders(folderID)
}

func (s *SQLRecordStore) FolderHasFiles(folderID string) (bool, error) {
	return models.FolderHasFiles(folderID)
}

func (s *SQLRecordStore) DeleteFolder(id string) error {
	return models.DeleteFolder(id)
}

func (s *SQLRecordStore) DeleteFile(id string) error {
	return models.DeleteFileRecord(id)
}

// VaultAdapter implements BlobVault on top of a filestore.BlobManager.
type VaultAdapter struct {
	manager *filestore.BlobManager
}

// NewVaultAdapter creates a BlobVault backed by the configured blob backend.
func NewVaultAdapter(manager *filestore.BlobManager) *VaultAdapter {
	return &VaultAdapter{manager: manager}
}

func (v *VaultAdapter) Save(path string, reader io.Reader) error {
	return v.manager.SaveReader(path, reader)
}

func (v *VaultAdapter) Locator(path string) (string, error) {
	return v.manager.Locator(path)
}

func (v *VaultAdapter) Delete(path string) error {
	return v.manager.Delete(path)
}
