package browser

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh275110/StoreIt/models"
)

// MemoryRecordStore implements RecordStore entirely in memory. It backs
// demo mode and doubles as the test double for FolderBrowser tests.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	folders map[string]models.Folder
	files   map[string]models.FileRecord
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		folders: make(map[string]models.Folder),
		files:   make(map[string]models.FileRecord),
	}
}

func (s *MemoryRecordStore) ChildFolders(ownerID, parentID string) ([]models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var folders []models.Folder
	for _, folder := range s.folders {
		if folder.OwnerID == ownerID && folder.ParentID == parentID {
			folders = append(folders, folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

func (s *MemoryRecordStore) FilesInFolder(ownerID, folderID string) ([]models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []models.FileRecord
	for _, file := range s.files {
		if file.OwnerID == ownerID && file.FolderID == folderID {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (s *MemoryRecordStore) InsertFolder(name, parentID, ownerID string) (*models.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.ErrEmptyFolderName
	}

	folder := models.Folder{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.folders[folder.ID] = folder
	s.mu.Unlock()

	return &folder, nil
}

func (s *MemoryRecordStore) InsertFile(record *models.FileRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	s.mu.Lock()
	s.files[record.ID] = *record
	s.mu.Unlock()

	return nil
}

func (s *MemoryRecordStore) GetFolder(id string) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, nil
	}
	return &folder, nil
}

func (s *MemoryRecordStore) GetFile(id string) (*models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	return &file, nil
}

func (s *MemoryRecordStore) HasChildFolders(folderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, folder := range s.folders {
		if folder.ParentID == folderID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryRecordStore) FolderHasFiles(folderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, file := range s.files {
		if file.FolderID == folderID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryRecordStore) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.folders[id]; !ok {
		return fmt.Errorf("folder not found: %s", id)
	}
	delete(s.folders, id)
	return nil
}

func (s *MemoryRecordStore) DeleteFile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	delete(s.files, id)
	return nil
}
