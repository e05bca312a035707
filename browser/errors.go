package browser

import "errors"

var (
	// ErrEmptyFolderName rejects folder creation with a blank name.
	ErrEmptyFolderName = errors.New("folder name cannot be empty")

	// ErrFolderNotEmpty rejects deletion of a folder that still has
	// child folders or files.
	ErrFolderNotEmpty = errors.New("cannot delete non-empty folder")

	// ErrFolderNotFound is returned for folder ids that do not exist or
	// belong to another user. The two cases are indistinguishable on
	// purpose, so ids cannot be probed across owners.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrUploadInProgress rejects starting a new upload batch while one
	// is already running.
	ErrUploadInProgress = errors.New("an upload is already in progress")

	// ErrFetchFailed wraps record store query failures during refresh.
	ErrFetchFailed = errors.New("failed to fetch files and folders")
)
