package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrFileNotFound is returned when no metadata row matches the id.
var ErrFileNotFound = errors.New("file not found")

// FileRecord is a file metadata row.
type FileRecord struct {
	ID          int64  `json:"id"`
	Size        int64  `json:"size"`
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	UploadTime  int64  `json:"upload_time"`
}

// FileStore persists file metadata rows.
type FileStore struct {
	db *sql.DB
}

// NewFileStore creates a new file metadata store
func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

// CreateFile inserts a metadata row for a stored blob.
func (s *FileStore) CreateFile(ctx context.Context, record *FileRecord) error {
	query := `
		INSERT INTO file (size, key, filename, content_type, upload_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	record.UploadTime = time.Now().Unix()
	err := s.db.QueryRowContext(ctx, query,
		record.Size,
		record.Key,
		record.Filename,
		record.ContentType,
		record.UploadTime,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// GetFile retrieves a metadata row by id.
func (s *FileStore) GetFile(ctx context.Context, fileID int64) (*FileRecord, error) {
	query := `SELECT id, size, key, filename, content_type, upload_time FROM file WHERE id = $1`

	var record FileRecord
	err := s.db.QueryRowContext(ctx, query, fileID).Scan(
		&record.ID,
		&record.Size,
		&record.Key,
		&record.Filename,
		&record.ContentType,
		&record.UploadTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return &record, nil
}

// CountFiles returns the total number of metadata rows.
func (s *FileStore) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// ListFiles returns one page of metadata rows, newest first.
func (s *FileStore) ListFiles(ctx context.Context, offset, limit int) ([]FileRecord, error) {
	query := `
		SELECT id, size, key, filename, content_type, upload_time
		FROM file
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var record FileRecord
		err := rows.Scan(
			&record.ID,
			&record.Size,
			&record.Key,
			&record.Filename,
			&record.ContentType,
			&record.UploadTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteFile removes a metadata row.
func (s *FileStore) DeleteFile(ctx context.Context, fileID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM file WHERE id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}
