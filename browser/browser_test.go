package browser

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh275110/StoreIt/models"
)

// fakeVault is a BlobVault that records calls and can fail selectively.
type fakeVault struct {
	mu       sync.Mutex
	saved    map[string][]byte
	deleted  []string
	failSave func(path string) error
	failDel  error
}

func newFakeVault() *fakeVault {
	return &fakeVault{saved: make(map[string][]byte)}
}

func (v *fakeVault) Save(path string, reader io.Reader) error {
	if v.failSave != nil {
		if err := v.failSave(path); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.saved[path] = data
	v.mu.Unlock()
	return nil
}

func (v *fakeVault) Locator(path string) (string, error) {
	return "/api/blob/" + path, nil
}

func (v *fakeVault) Delete(path string) error {
	v.mu.Lock()
	v.deleted = append(v.deleted, path)
	v.mu.Unlock()
	return v.failDel
}

// failingRecords wraps a RecordStore and fails listing calls on demand.
type failingRecords struct {
	RecordStore
	failList bool
}

func (f *failingRecords) ChildFolders(ownerID, parentID string) ([]models.Folder, error) {
	if f.failList {
		return nil, errors.New("boom")
	}
	return f.RecordStore.ChildFolders(ownerID, parentID)
}

func newTestBrowser() (*FolderBrowser, *MemoryRecordStore, *fakeVault) {
	records := NewMemoryRecordStore()
	vault := newFakeVault()
	return New(records, vault, "user-1"), records, vault
}

func TestNavigateIntoPushesHistory(t *testing.T) {
	b, records, _ := newTestBrowser()

	docs, err := records.InsertFolder("Documents", "", "user-1")
	require.NoError(t, err)
	work, err := records.InsertFolder("Work", docs.ID, "user-1")
	require.NoError(t, err)

	require.NoError(t, b.NavigateInto(docs.ID))
	assert.Equal(t, docs.ID, b.State().CurrentFolderID)
	assert.Equal(t, []string{RootSentinel}, b.State().History)

	require.NoError(t, b.NavigateInto(work.ID))
	assert.Equal(t, work.ID, b.State().CurrentFolderID)
	assert.Equal(t, []string{RootSentinel, docs.ID}, b.State().History)
}

func TestNavigateBackReturnsToPreviousFolder(t *testing.T) {
	b, records, _ := newTestBrowser()

	docs, err := records.InsertFolder("Documents", "", "user-1")
	require.NoError(t, err)
	work, err := records.InsertFolder("Work", docs.ID, "user-1")
	require.NoError(t, err)

	require.NoError(t, b.NavigateInto(docs.ID))
	require.NoError(t, b.NavigateInto(work.ID))

	require.NoError(t, b.NavigateBack())
	assert.Equal(t, docs.ID, b.State().CurrentFolderID)

	require.NoError(t, b.NavigateBack())
	assert.Equal(t, "", b.State().CurrentFolderID, "root sentinel maps back to the empty root id")
	assert.Empty(t, b.State().History)
}

func TestNavigateBackOnEmptyHistoryIsNoOp(t *testing.T) {
	b, _, _ := newTestBrowser()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.NavigateBack())
	}
	assert.Equal(t, "", b.State().CurrentFolderID)
	assert.Empty(t, b.State().History)
}

func TestRefreshKeepsViewOnError(t *testing.T) {
	records := NewMemoryRecordStore()
	failing := &failingRecords{RecordStore: records}
	b := New(failing, newFakeVault(), "user-1")

	_, err := records.InsertFolder("Documents", "", "user-1")
	require.NoError(t, err)
	require.NoError(t, b.Refresh())
	require.Len(t, b.State().Folders, 1)

	failing.failList = true
	err = b.Refresh()
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Len(t, b.State().Folders, 1, "cached view survives a failed refresh")
}

func TestCreateFolderRejectsBlankNames(t *testing.T) {
	b, records, _ := newTestBrowser()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := b.CreateFolder(name)
		assert.ErrorIs(t, err, ErrEmptyFolderName)
	}

	folders, err := records.ChildFolders("user-1", "")
	require.NoError(t, err)
	assert.Empty(t, folders, "no folder is created for a blank name")
}

func TestCreateFolderAppearsInView(t *testing.T) {
	b, _, _ := newTestBrowser()

	folder, err := b.CreateFolder("Photos")
	require.NoError(t, err)
	assert.Equal(t, "Photos", folder.Name)

	state := b.State()
	require.Len(t, state.Folders, 1)
	assert.Equal(t, folder.ID, state.Folders[0].ID)
}

func TestUploadFilesStoresBlobAndRecord(t *testing.T) {
	b, records, vault := newTestBrowser()

	results, err := b.UploadFiles([]Upload{
		{Name: "report.pdf", ContentType: "application/pdf", SizeBytes: 4, Content: strings.NewReader("data")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	record := results[0].Record
	assert.Equal(t, "report.pdf", record.FullName)
	assert.True(t, strings.HasPrefix(record.BlobPath, "files/user-1/"), "blob path is owner scoped")
	assert.True(t, strings.HasSuffix(record.BlobPath, "_report.pdf"))
	assert.Contains(t, vault.saved, record.BlobPath)

	files, err := records.FilesInFolder("user-1", "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, record.ID, files[0].ID)
}

func TestUploadFilesTruncatesLongDisplayNames(t *testing.T) {
	b, _, _ := newTestBrowser()

	longName := strings.Repeat("a", 40) + ".txt"
	results, err := b.UploadFiles([]Upload{
		{Name: longName, SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	record := results[0].Record
	assert.Equal(t, strings.Repeat("a", 30)+"...", record.Filename)
	assert.Equal(t, longName, record.FullName, "the original name is kept in full")
}

func TestUploadFilesIsolatesFailures(t *testing.T) {
	b, records, vault := newTestBrowser()
	vault.failSave = func(path string) error {
		if strings.HasSuffix(path, "_bad.bin") {
			return errors.New("disk full")
		}
		return nil
	}

	results, err := b.UploadFiles([]Upload{
		{Name: "good.txt", SizeBytes: 2, Content: strings.NewReader("ok")},
		{Name: "bad.bin", SizeBytes: 2, Content: strings.NewReader("no")},
		{Name: "also-good.txt", SizeBytes: 2, Content: strings.NewReader("ok")},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	files, err := records.FilesInFolder("user-1", "")
	require.NoError(t, err)
	assert.Len(t, files, 2, "only the successful uploads leave records")
	assert.Len(t, b.State().Files, 2, "the view was refreshed after the batch")
}

func TestUploadFilesRejectsConcurrentBatches(t *testing.T) {
	b, _, vault := newTestBrowser()

	started := make(chan struct{})
	release := make(chan struct{})
	vault.failSave = func(path string) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := b.UploadFiles([]Upload{
			{Name: "slow.txt", SizeBytes: 1, Content: strings.NewReader("x")},
		})
		done <- err
	}()

	<-started
	_, err := b.UploadFiles([]Upload{
		{Name: "second.txt", SizeBytes: 1, Content: strings.NewReader("y")},
	})
	assert.ErrorIs(t, err, ErrUploadInProgress)
	assert.True(t, b.State().UploadInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, b.State().UploadInProgress)
}

func TestUploadFilesLandInFolderAtBatchStart(t *testing.T) {
	b, records, _ := newTestBrowser()

	docs, err := records.InsertFolder("Documents", "", "user-1")
	require.NoError(t, err)
	require.NoError(t, b.NavigateInto(docs.ID))

	results, err := b.UploadFiles([]Upload{
		{Name: "inside.txt", SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, docs.ID, results[0].Record.FolderID)
}

func TestDeleteFileDropsRecordAndBlob(t *testing.T) {
	b, records, vault := newTestBrowser()

	results, err := b.UploadFiles([]Upload{
		{Name: "doomed.txt", SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	record := results[0].Record

	require.NoError(t, b.DeleteFile(record.ID, record.BlobPath))

	file, err := records.GetFile(record.ID)
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Contains(t, vault.deleted, record.BlobPath)
	assert.Empty(t, b.State().Files, "the view drops the file without waiting for a refresh")
}

func TestDeleteFileSucceedsWhenBlobDeleteFails(t *testing.T) {
	b, records, vault := newTestBrowser()

	results, err := b.UploadFiles([]Upload{
		{Name: "sticky.txt", SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	record := results[0].Record

	vault.failDel = errors.New("backend unreachable")
	require.NoError(t, b.DeleteFile(record.ID, record.BlobPath), "a blob delete failure is not surfaced")

	file, err := records.GetFile(record.ID)
	require.NoError(t, err)
	assert.Nil(t, file, "the record is gone regardless")
}

func TestDeleteFolderRefusesNonEmpty(t *testing.T) {
	b, records, _ := newTestBrowser()

	docs, err := records.InsertFolder("Documents", "", "user-1")
	require.NoError(t, err)

	t.Run("contains a file", func(t *testing.T) {
		require.NoError(t, records.InsertFile(&models.FileRecord{
			ID: "f1", Filename: "a.txt", FullName: "a.txt", FolderID: docs.ID, OwnerID: "user-1",
		}))
		assert.ErrorIs(t, b.DeleteFolder(docs.ID), ErrFolderNotEmpty)
		require.NoError(t, records.DeleteFile("f1"))
	})

	t.Run("contains a folder", func(t *testing.T) {
		child, err := records.InsertFolder("Nested", docs.ID, "user-1")
		require.NoError(t, err)
		assert.ErrorIs(t, b.DeleteFolder(docs.ID), ErrFolderNotEmpty)
		require.NoError(t, records.DeleteFolder(child.ID))
	})

	t.Run("empty", func(t *testing.T) {
		require.NoError(t, b.Refresh())
		require.NoError(t, b.DeleteFolder(docs.ID))
		assert.Empty(t, b.State().Folders)
	})
}

func TestUploadFilesSanitizesTraversalNames(t *testing.T) {
	b, _, vault := newTestBrowser()

	results, err := b.UploadFiles([]Upload{
		{Name: "../../etc/passwd", SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	record := results[0].Record
	assert.True(t, strings.HasPrefix(record.BlobPath, "files/user-1/"))
	assert.True(t, strings.HasSuffix(record.BlobPath, "_passwd"), "only the basename reaches the blob path")
	assert.NotContains(t, record.BlobPath, "..")
	assert.Contains(t, vault.saved, record.BlobPath)
}

func TestDeleteFolderRefusesForeignOwner(t *testing.T) {
	b, records, _ := newTestBrowser()

	foreign, err := records.InsertFolder("Theirs", "", "user-2")
	require.NoError(t, err)

	assert.ErrorIs(t, b.DeleteFolder(foreign.ID), ErrFolderNotFound)

	folder, err := records.GetFolder(foreign.ID)
	require.NoError(t, err)
	assert.NotNil(t, folder, "the foreign folder survives")
}

func TestDeleteFolderUnknownID(t *testing.T) {
	b, _, _ := newTestBrowser()
	assert.ErrorIs(t, b.DeleteFolder("no-such-id"), ErrFolderNotFound)
}

func TestStateSnapshotsAreIndependent(t *testing.T) {
	b, _, _ := newTestBrowser()

	_, err := b.CreateFolder("Photos")
	require.NoError(t, err)

	state := b.State()
	state.Folders[0].Name = "Mutated"

	assert.Equal(t, "Photos", b.State().Folders[0].Name)
}

func TestUploadPathsUseMillisecondTimestamps(t *testing.T) {
	b, _, _ := newTestBrowser()

	before := time.Now().UnixMilli()
	results, err := b.UploadFiles([]Upload{
		{Name: "t.txt", SizeBytes: 1, Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	after := time.Now().UnixMilli()

	var millis int64
	var name string
	_, err = fmt.Sscanf(results[0].Record.BlobPath, "files/user-1/%d_%s", &millis, &name)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, millis, before)
	assert.LessOrEqual(t, millis, after)
	assert.Equal(t, "t.txt", name)
}
