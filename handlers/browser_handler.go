package handlers

import (
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Harsh275110/StoreIt/browser"
	"github.com/Harsh275110/StoreIt/filestore"
	"github.com/Harsh275110/StoreIt/models"
	"github.com/Harsh275110/StoreIt/utils"
)

const (
	sessionTTL             = time.Hour
	sessionCleanupInterval = 10 * time.Minute
)

var (
	recordStore browser.RecordStore
	blobVault   browser.BlobVault
	blobManager *filestore.BlobManager
)

// browserSession holds one user's FolderBrowser between requests.
type browserSession struct {
	browser  *browser.FolderBrowser
	lastSeen time.Time
}

var sessionBrowsers = NewTTLStore[browserSession](sessionTTL, sessionCleanupInterval, func(s *browserSession) time.Time {
	return s.lastSeen
})

// sessionBrowser returns the authenticated user's FolderBrowser, creating
// one rooted at the top of their tree on first use.
func sessionBrowser(c *fiber.Ctx) *browser.FolderBrowser {
	userID := currentUserID(c)
	session := sessionBrowsers.GetOrCreate(userID, func() *browserSession {
		return &browserSession{browser: browser.New(recordStore, blobVault, userID)}
	})
	session.lastSeen = time.Now()
	return session.browser
}

// folderView and fileView shape listings for the UI, adding the
// human-readable size alongside the raw byte count.
type fileView struct {
	models.FileRecord
	SizeDisplay string `json:"size_display"`
}

type browserView struct {
	CurrentFolderID  string          `json:"current_folder_id"`
	History          []string        `json:"history"`
	Folders          []models.Folder `json:"folders"`
	Files            []fileView      `json:"files"`
	UploadInProgress bool            `json:"upload_in_progress"`
}

func viewOf(state browser.State) browserView {
	view := browserView{
		CurrentFolderID:  state.CurrentFolderID,
		History:          state.History,
		Folders:          state.Folders,
		Files:            make([]fileView, 0, len(state.Files)),
		UploadInProgress: state.UploadInProgress,
	}
	for _, file := range state.Files {
		view.Files = append(view.Files, fileView{
			FileRecord:  file,
			SizeDisplay: utils.FormatFileSize(file.SizeBytes),
		})
	}
	return view
}

// GetBrowserHandler refreshes and returns the current folder view.
func GetBrowserHandler(c *fiber.Ctx) error {
	b := sessionBrowser(c)
	if err := b.Refresh(); err != nil {
		log.Warnf("Refresh failed for %s: %v", b.OwnerID(), err)
		return sendError(c, ErrFetchFailed)
	}
	return c.JSON(viewOf(b.State()))
}

// NavigateFormData selects a child folder to enter.
type NavigateFormData struct {
	FolderID string `json:"folder_id" form:"folder_id"`
}

// NavigateIntoHandler enters a child folder.
func NavigateIntoHandler(c *fiber.Ctx) error {
	var form NavigateFormData
	if err := c.BodyParser(&form); err != nil || form.FolderID == "" {
		return sendBadRequestError(c, ErrBadRequest)
	}

	b := sessionBrowser(c)
	if err := b.NavigateInto(form.FolderID); err != nil {
		log.Warnf("Navigate failed for %s: %v", b.OwnerID(), err)
		return sendError(c, ErrFetchFailed)
	}
	return c.JSON(viewOf(b.State()))
}

// NavigateBackHandler returns to the previously viewed folder. With an
// empty history it is a no-op returning the unchanged view.
func NavigateBackHandler(c *fiber.Ctx) error {
	b := sessionBrowser(c)
	if err := b.NavigateBack(); err != nil {
		log.Warnf("Navigate back failed for %s: %v", b.OwnerID(), err)
		return sendError(c, ErrFetchFailed)
	}
	return c.JSON(viewOf(b.State()))
}

// CreateFolderFormData names a folder to create under the current folder.
type CreateFolderFormData struct {
	Name string `json:"name" form:"name"`
}

// CreateFolderHandler creates a folder under the current folder.
func CreateFolderHandler(c *fiber.Ctx) error {
	var form CreateFolderFormData
	if err := c.BodyParser(&form); err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	b := sessionBrowser(c)
	folder, err := b.CreateFolder(form.Name)
	if err != nil {
		if errors.Is(err, browser.ErrEmptyFolderName) {
			return sendValidationError(c, "Folder name cannot be empty")
		}
		return sendInternalServerError(c, "Error creating folder", err)
	}

	foldersCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(folder)
}

// uploadResultView reports the per-file outcome of an upload batch.
type uploadResultView struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// UploadFilesHandler stores every file of a multipart batch. One failing
// file does not abort the rest; the response lists each outcome.
func UploadFilesHandler(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return sendValidationError(c, "No files submitted")
	}

	uploads := make([]browser.Upload, 0, len(fileHeaders))
	openers := make([]interface{ Close() error }, 0, len(fileHeaders))
	defer func() {
		for _, o := range openers {
			o.Close()
		}
	}()

	for _, header := range fileHeaders {
		content, err := header.Open()
		if err != nil {
			return sendInternalServerError(c, "Error reading upload", err)
		}
		openers = append(openers, content)
		uploads = append(uploads, browser.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Content:     content,
		})
	}

	b := sessionBrowser(c)
	results, refreshErr := b.UploadFiles(uploads)
	if refreshErr != nil {
		if errors.Is(refreshErr, browser.ErrUploadInProgress) {
			return sendConflictError(c, "An upload is already in progress")
		}
		log.Warnf("Post-upload refresh failed for %s: %v", b.OwnerID(), refreshErr)
	}

	views := make([]uploadResultView, 0, len(results))
	uploaded := 0
	for _, result := range results {
		view := uploadResultView{Name: result.Name, OK: result.Err == nil}
		if result.Err != nil {
			view.Error = result.Err.Error()
		} else {
			uploaded++
			filesUploaded.Inc()
			bytesUploaded.Add(float64(result.Record.SizeBytes))
		}
		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"uploaded": uploaded,
		"results":  views,
		"state":    viewOf(b.State()),
	})
}

// DeleteFileHandler removes a file record and best-effort deletes its blob.
func DeleteFileHandler(c *fiber.Ctx) error {
	fileID := c.Params("id")

	record, err := recordStore.GetFile(fileID)
	if err != nil {
		return sendInternalServerError(c, "Error deleting file", err)
	}
	if record == nil || record.OwnerID != currentUserID(c) {
		return sendNotFoundError(c, "File not found")
	}

	b := sessionBrowser(c)
	if err := b.DeleteFile(record.ID, record.BlobPath); err != nil {
		return sendInternalServerError(c, "Error deleting file", err)
	}

	filesDeleted.Inc()
	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}

// DeleteFolderHandler removes an empty folder; non-empty folders are refused.
func DeleteFolderHandler(c *fiber.Ctx) error {
	folderID := c.Params("id")

	b := sessionBrowser(c)
	if err := b.DeleteFolder(folderID); err != nil {
		if errors.Is(err, browser.ErrFolderNotFound) {
			return sendNotFoundError(c, "Folder not found")
		}
		if errors.Is(err, browser.ErrFolderNotEmpty) {
			return sendValidationError(c, "Cannot delete non-empty folder")
		}
		return sendInternalServerError(c, "Error deleting folder", err)
	}

	return c.JSON(fiber.Map{"message": "Folder deleted successfully"})
}

// DownloadFileHandler resolves the blob locator for a file. Backends with
// natively addressable URLs (S3 presigned) answer with a redirect; blobs
// behind the app are streamed directly.
func DownloadFileHandler(c *fiber.Ctx) error {
	record, err := recordStore.GetFile(c.Params("id"))
	if err != nil {
		return sendInternalServerError(c, "Error downloading file", err)
	}
	if record == nil || record.OwnerID != currentUserID(c) {
		return sendNotFoundError(c, "File not found")
	}

	locator, err := blobVault.Locator(record.BlobPath)
	if err != nil {
		return sendInternalServerError(c, "Error resolving download", err)
	}

	downloads.Inc()
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return c.Redirect(locator, fiber.StatusFound)
	}
	return streamBlob(c, record.BlobPath, record.FullName, record.ContentType)
}

// BlobHandler serves blobs stored behind the app (local, SFTP and mock
// backends). Paths are scoped per owner, so only the owner may fetch them.
func BlobHandler(c *fiber.Ctx) error {
	blobPath, err := url.PathUnescape(c.Params("+"))
	if err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	if !blobPathAllowed(blobPath, currentUserID(c)) {
		return sendNotFoundError(c, "File not found")
	}

	return streamBlob(c, blobPath, "", "")
}

// blobPathAllowed reports whether a requested blob path belongs to userID.
// The path must already be canonical; a ".." segment would survive the
// owner-prefix check and escape into another user's subtree otherwise.
func blobPathAllowed(blobPath, userID string) bool {
	if blobPath == "" || path.Clean(blobPath) != blobPath || strings.Contains(blobPath, "..") {
		return false
	}
	return strings.HasPrefix(blobPath, "files/"+userID+"/")
}

func streamBlob(c *fiber.Ctx, path, downloadName, contentType string) error {
	reader, err := blobManager.LoadReader(path)
	if err != nil {
		return sendNotFoundError(c, "File not found")
	}

	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	if downloadName != "" {
		c.Attachment(downloadName)
	}
	return c.SendStream(reader)
}
