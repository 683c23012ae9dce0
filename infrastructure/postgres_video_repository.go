// infrastructure/postgres_video_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/vitovidale/video-upload-gateway/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS stored_videos (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	filename   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stored_videos_filename ON stored_videos (filename);`

type PostgresVideoRepository struct {
	DB *sql.DB
}

var _ domain.VideoRepository = (*PostgresVideoRepository)(nil)

// PostgresConnString builds a lib/pq keyword/value connection string.
func PostgresConnString(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// NewPostgresVideoRepository opens the database and creates the table if needed.
func NewPostgresVideoRepository(ctx context.Context, connStr string) (*PostgresVideoRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresVideoRepository{DB: db}, nil
}

func (r *PostgresVideoRepository) Save(ctx context.Context, video *domain.StoredVideo) error {
	query := `INSERT INTO stored_videos (filename) VALUES ($1) RETURNING id, created_at`
	return r.DB.QueryRowContext(ctx, query, video.Filename).Scan(&video.ID, &video.CreatedAt)
}

func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (*domain.StoredVideo, error) {
	var v domain.StoredVideo
	query := `SELECT id, filename, created_at FROM stored_videos WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Filename, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query video %s: %w", id, err)
	}
	return &v, nil
}

func (r *PostgresVideoRepository) DeleteByFilename(ctx context.Context, filename string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM stored_videos WHERE filename = $1`, filename)
	if err != nil {
		return fmt.Errorf("failed to delete video %s: %w", filename, err)
	}
	return requireAffected(res)
}

func (r *PostgresVideoRepository) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }

func (r *PostgresVideoRepository) Close(context.Context) error { return r.DB.Close() }

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}
