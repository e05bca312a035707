// Package browser implements the folder-scoped file browser: a navigation
// stack over a user's folder tree plus the create/list/delete operations
// reconciling local view state with the record and blob stores.
package browser

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Harsh275110/StoreIt/models"
	"github.com/Harsh275110/StoreIt/utils"
)

// RootSentinel marks the root of the folder tree on the history stack,
// since the root itself has no folder id.
const RootSentinel = "root"

// FolderBrowser tracks one user's current folder, navigation history and
// the cached child folders/files of the current folder. It is safe for
// concurrent use by multiple requests of the same session.
type FolderBrowser struct {
	records RecordStore
	blobs   BlobVault
	ownerID string

	mu               sync.Mutex
	currentFolderID  string // empty = root
	history          []string
	folders          []models.Folder
	files            []models.FileRecord
	uploadInProgress bool
}

// State is a point-in-time snapshot of a FolderBrowser.
type State struct {
	CurrentFolderID  string              `json:"current_folder_id"`
	History          []string            `json:"history"`
	Folders          []models.Folder     `json:"folders"`
	Files            []models.FileRecord `json:"files"`
	UploadInProgress bool                `json:"upload_in_progress"`
}

// Upload describes one file blob submitted in an upload batch.
type Upload struct {
	Name        string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// UploadResult reports the per-file outcome of an upload batch.
type UploadResult struct {
	Name   string
	Record *models.FileRecord
	Err    error
}

// New creates a FolderBrowser for ownerID rooted at the top of their tree.
func New(records RecordStore, blobs BlobVault, ownerID string) *FolderBrowser {
	return &FolderBrowser{
		records: records,
		blobs:   blobs,
		ownerID: ownerID,
	}
}

// OwnerID returns the id of the user this browser belongs to.
func (b *FolderBrowser) OwnerID() string {
	return b.ownerID
}

// State returns a snapshot of the browser's current view.
func (b *FolderBrowser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		CurrentFolderID:  b.currentFolderID,
		History:          append([]string(nil), b.history...),
		Folders:          append([]models.Folder(nil), b.folders...),
		Files:            append([]models.FileRecord(nil), b.files...),
		UploadInProgress: b.uploadInProgress,
	}
}

// Refresh re-fetches the child folders and files of the current folder.
// On any query error the cached view is left unchanged.
func (b *FolderBrowser) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshLocked()
}

func (b *FolderBrowser) refreshLocked() error {
	folders, err := b.records.ChildFolders(b.ownerID, b.currentFolderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	files, err := b.records.FilesInFolder(b.ownerID, b.currentFolderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	b.folders = folders
	b.files = files
	return nil
}

// NavigateInto pushes the current folder onto the history stack, enters
// folderID and refreshes the view. The caller is expected to pass one of
// the currently listed child folders.
func (b *FolderBrowser) NavigateInto(folderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	marker := b.currentFolderID
	if marker == "" {
		marker = RootSentinel
	}
	b.history = append(b.history, marker)
	b.currentFolderID = folderID

	return b.refreshLocked()
}

// NavigateBack pops the history stack and returns to that folder,
// refreshing the view. With an empty history it is a no-op, so repeated
// application eventually settles at the root.
func (b *FolderBrowser) NavigateBack() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.history) == 0 {
		return nil
	}

	marker := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	if marker == RootSentinel {
		b.currentFolderID = ""
	} else {
		b.currentFolderID = marker
	}

	return b.refreshLocked()
}

// CreateFolder creates a folder named name under the current folder and
// refreshes the view. Blank names are rejected before any store call.
func (b *FolderBrowser) CreateFolder(name string) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !utils.HasVisibleCharacters(name) {
		return nil, ErrEmptyFolderName
	}

	folder, err := b.records.InsertFolder(name, b.currentFolderID, b.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	if err := b.refreshLocked(); err != nil {
		return folder, err
	}
	return folder, nil
}

// UploadFiles stores each blob and inserts its file record, isolating
// failures per file so one bad upload never aborts the batch. The view is
// refreshed exactly once after every file has settled. Only one batch may
// run at a time per browser.
func (b *FolderBrowser) UploadFiles(uploads []Upload) ([]UploadResult, error) {
	b.mu.Lock()
	if b.uploadInProgress {
		b.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	b.uploadInProgress = true
	folderID := b.currentFolderID
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.uploadInProgress = false
		b.mu.Unlock()
	}()

	results := make([]UploadResult, 0, len(uploads))
	for _, upload := range uploads {
		record, err := b.uploadOne(upload, folderID)
		if err != nil {
			log.Warnf("Upload of %s failed: %v", upload.Name, err)
		}
		results = append(results, UploadResult{Name: upload.Name, Record: record, Err: err})
	}

	return results, b.Refresh()
}

func (b *FolderBrowser) uploadOne(upload Upload, folderID string) (*models.FileRecord, error) {
	// Timestamped path keyed by owner avoids collisions between same-named
	// uploads. Only the basename goes into the path, so a crafted filename
	// cannot place the blob outside the owner's subtree.
	path := fmt.Sprintf("files/%s/%d_%s", b.ownerID, time.Now().UnixMilli(), filepath.Base(upload.Name))

	if err := b.blobs.Save(path, upload.Content); err != nil {
		return nil, fmt.Errorf("blob upload failed: %w", err)
	}

	if _, err := b.blobs.Locator(path); err != nil {
		return nil, fmt.Errorf("failed to resolve retrieval locator: %w", err)
	}

	record := &models.FileRecord{
		Filename:    utils.TruncateFilename(upload.Name),
		FullName:    upload.Name,
		BlobPath:    path,
		ContentType: upload.ContentType,
		SizeBytes:   upload.SizeBytes,
		FolderID:    folderID,
		OwnerID:     b.ownerID,
	}
	if err := b.records.InsertFile(record); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return record, nil
}

// DeleteFile removes the file record, then best-effort deletes its blob.
// A blob-store failure is logged and ignored since the record is already
// gone; the cached files list drops the entry immediately.
func (b *FolderBrowser) DeleteFile(fileID, blobPath string) error {
	if err := b.records.DeleteFile(fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := b.blobs.Delete(blobPath); err != nil {
		log.Warnf("Blob delete for %s failed (blob may already be gone): %v", blobPath, err)
	}

	b.mu.Lock()
	files := b.files[:0]
	for _, f := range b.files {
		if f.ID != fileID {
			files = append(files, f)
		}
	}
	b.files = files
	b.mu.Unlock()

	return nil
}

// DeleteFolder removes an empty folder owned by this browser's user. Two
// existence queries guard the delete; the check and the delete are
// separate round trips, so a create racing between them can orphan a
// child. That window is accepted.
func (b *FolderBrowser) DeleteFolder(folderID string) error {
	folder, err := b.records.GetFolder(folderID)
	if err != nil {
		return fmt.Errorf("failed to look up folder: %w", err)
	}
	if folder == nil || folder.OwnerID != b.ownerID {
		return ErrFolderNotFound
	}

	hasFiles, err := b.records.FolderHasFiles(folderID)
	if err != nil {
		return fmt.Errorf("failed to check folder contents: %w", err)
	}
	hasFolders, err := b.records.HasChildFolders(folderID)
	if err != nil {
		return fmt.Errorf("failed to check folder contents: %w", err)
	}
	if hasFiles || hasFolders {
		return ErrFolderNotEmpty
	}

	if err := b.records.DeleteFolder(folderID); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	b.mu.Lock()
	folders := b.folders[:0]
	for _, f := range b.folders {
		if f.ID != folderID {
			folders = append(folders, f)
		}
	}
	b.folders = folders
	b.mu.Unlock()

	return nil
}
