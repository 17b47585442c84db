package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proximahq/proxima/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestFileServiceUploadDownload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO file`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	svc := NewFileService(blobs, NewFileStore(db), testLogger())

	record, err := svc.Upload(context.Background(), strings.NewReader("report body"), "report.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, int64(11), record.Size)
	assert.Equal(t, "report.pdf", record.Filename)
	assert.NotZero(t, record.UploadTime)

	mock.ExpectQuery(`SELECT id, size, key, filename, content_type, upload_time FROM file`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "size", "key", "filename", "content_type", "upload_time"}).
			AddRow(record.ID, record.Size, record.Key, record.Filename, record.ContentType, record.UploadTime))

	got, rc, err := svc.Download(context.Background(), 1)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(data))
	assert.Equal(t, "application/pdf", got.ContentType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileServiceUploadCleansUpOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO file`).
		WillReturnError(assert.AnError)

	svc := NewFileService(blobs, NewFileStore(db), testLogger())

	_, err = svc.Upload(context.Background(), strings.NewReader("x"), "x.txt", "text/plain")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileServiceDownloadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, size, key, filename, content_type, upload_time FROM file`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "size", "key", "filename", "content_type", "upload_time"}))

	svc := NewFileService(blobs, NewFileStore(db), testLogger())

	_, _, err = svc.Download(context.Background(), 404)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileServiceGetFileList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	blobs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM file`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT id, size, key, filename, content_type, upload_time\s+FROM file`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "size", "key", "filename", "content_type", "upload_time"}).
			AddRow(int64(1), int64(5), "ab/key.txt", "key.txt", "text/plain", int64(1700000000)))

	svc := NewFileService(blobs, NewFileStore(db), testLogger())

	page, err := svc.GetFileList(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "key.txt", page.Records[0].Filename)
	assert.NoError(t, mock.ExpectationsWereMet())
}
