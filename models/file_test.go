package models

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestCreateFileRecord(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	mock.ExpectExec(`INSERT INTO files`).
		WithArgs(sqlmock.AnyArg(), "report.pdf", "report.pdf", "files/user-1/123_report.pdf",
			"application/pdf", int64(2048), nil, "user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &FileRecord{
		Filename:    "report.pdf",
		FullName:    "report.pdf",
		BlobPath:    "files/user-1/123_report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		OwnerID:     "user-1",
	}
	err = CreateFileRecord(record)
	assert.NoError(t, err)
	assert.NotEmpty(t, record.ID, "an id is generated on insert")
	assert.False(t, record.CreatedAt.IsZero())
	assert.False(t, record.UpdatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFilesInFolder_NewestFirst(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "filename", "full_name", "blob_path", "content_type", "size_bytes", "folder_id", "owner_id", "created_at", "updated_at"}).
		AddRow("f2", "new.txt", "new.txt", "files/user-1/2_new.txt", "text/plain", int64(1), "", "user-1", now, now).
		AddRow("f1", "old.txt", "old.txt", "files/user-1/1_old.txt", "text/plain", int64(1), "", "user-1", now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`FROM files\s+WHERE owner_id = \? AND folder_id IS \?\s+ORDER BY created_at DESC`).
		WithArgs("user-1", nil).
		WillReturnRows(rows)

	files, err := GetFilesInFolder("user-1", "")
	assert.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "f2", files[0].ID)
	assert.Equal(t, "f1", files[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFileByID_NotFound(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	mock.ExpectQuery(`FROM files\s+WHERE id = \?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "full_name", "blob_path", "content_type", "size_bytes", "folder_id", "owner_id", "created_at", "updated_at"}))

	record, err := GetFileByID("missing")
	assert.NoError(t, err)
	assert.Nil(t, record)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderHasFiles(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	mock.ExpectQuery(`SELECT 1 FROM files WHERE folder_id = \? LIMIT 1`).
		WithArgs("folder-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	has, err := FolderHasFiles("folder-1")
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFileRecord(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	mock.ExpectExec(`DELETE FROM files WHERE id = \?`).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, DeleteFileRecord("f1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalStoredBytes(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(size_bytes\), 0\) FROM files`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(123456)))

	total, err := TotalStoredBytes()
	assert.NoError(t, err)
	assert.Equal(t, int64(123456), total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBlobPaths(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	originalDB := db
	db = mockDB
	defer func() { db = originalDB }()

	rows := sqlmock.NewRows([]string{"blob_path"}).
		AddRow("files/user-1/1_a.txt").
		AddRow("files/user-2/2_b.txt")

	mock.ExpectQuery(`SELECT blob_path FROM files`).WillReturnRows(rows)

	paths, err := ListBlobPaths()
	assert.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "files/user-1/1_a.txt")
	assert.Contains(t, paths, "files/user-2/2_b.txt")

	assert.NoError(t, mock.ExpectationsWereMet())
}
