// infrastructure/sqlite_video_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vitovidale/video-upload-gateway/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS stored_videos (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stored_videos_filename ON stored_videos (filename);`

// SQLiteVideoRepository is a single-file metadata store for single-node setups.
type SQLiteVideoRepository struct {
	db *sql.DB
}

var _ domain.VideoRepository = (*SQLiteVideoRepository)(nil)

func NewSQLiteVideoRepository(ctx context.Context, path string) (*SQLiteVideoRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteVideoRepository{db: db}, nil
}

func (r *SQLiteVideoRepository) Save(ctx context.Context, video *domain.StoredVideo) error {
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stored_videos (id, filename, created_at) VALUES (?, ?, ?)`,
		id, video.Filename, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	video.ID = id
	video.CreatedAt = createdAt
	return nil
}

func (r *SQLiteVideoRepository) FindByID(ctx context.Context, id string) (*domain.StoredVideo, error) {
	var v domain.StoredVideo
	err := r.db.QueryRowContext(ctx,
		`SELECT id, filename, created_at FROM stored_videos WHERE id = ?`, id,
	).Scan(&v.ID, &v.Filename, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query video %s: %w", id, err)
	}
	return &v, nil
}

func (r *SQLiteVideoRepository) DeleteByFilename(ctx context.Context, filename string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stored_videos WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("failed to delete video %s: %w", filename, err)
	}
	return requireAffected(res)
}

func (r *SQLiteVideoRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *SQLiteVideoRepository) Close(context.Context) error { return r.db.Close() }
