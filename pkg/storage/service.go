package storage

import (
	"context"
	"io"

	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/observability"
)

// FileService ties blob contents and metadata rows together.
type FileService struct {
	blobs  *BlobStore
	store  *FileStore
	logger *observability.Logger
}

// NewFileService creates a new file service
func NewFileService(blobs *BlobStore, store *FileStore, logger *observability.Logger) *FileService {
	return &FileService{blobs: blobs, store: store, logger: logger}
}

// Upload stores the stream and records its metadata. The blob is removed
// again if the metadata insert fails, so orphans never accumulate.
func (s *FileService) Upload(ctx context.Context, r io.Reader, filename, contentType string) (*FileRecord, error) {
	key, size, err := s.blobs.Save(r, filename)
	if err != nil {
		return nil, err
	}

	record := &FileRecord{
		Size:        size,
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
	}
	if err := s.store.CreateFile(ctx, record); err != nil {
		if rmErr := s.blobs.Remove(key); rmErr != nil {
			s.logger.WithError(rmErr).WithField("key", key).Warn("failed to clean up blob")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"file_id": record.ID,
		"size":    size,
	}).Info("file uploaded")
	return record, nil
}

// Download returns the metadata row and an open reader for the contents.
// The caller owns the reader.
func (s *FileService) Download(ctx context.Context, fileID int64) (*FileRecord, io.ReadCloser, error) {
	record, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(record.Key)
	if err != nil {
		return nil, nil, err
	}
	return record, rc, nil
}

// GetFileList returns one page of metadata rows, newest first.
func (s *FileService) GetFileList(ctx context.Context, current, size int) (*manage.Page[FileRecord], error) {
	total, err := s.store.CountFiles(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListFiles(ctx, (current-1)*size, size)
	if err != nil {
		return nil, err
	}

	return manage.NewPage(total, current, size, records), nil
}

// DeleteFile removes the metadata row and then the blob.
func (s *FileService) DeleteFile(ctx context.Context, fileID int64) error {
	record, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Remove(record.Key); err != nil {
		s.logger.WithError(err).WithField("key", record.Key).Warn("failed to remove blob")
	}
	return nil
}
