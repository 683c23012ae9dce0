// domain/interfaces.go
package domain

import (
	"context"
	"io"
)

// VideoRepository persists StoredVideo records. Save assigns ID and CreatedAt.
type VideoRepository interface {
	Save(ctx context.Context, video *StoredVideo) error
	FindByID(ctx context.Context, id string) (*StoredVideo, error)
	DeleteByFilename(ctx context.Context, filename string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// FileStorageService owns the storage root. Filenames are plain names, never
// paths; implementations must refuse anything resolving outside the root.
type FileStorageService interface {
	Save(src io.Reader, filename string) error
	Delete(filename string) bool
	Root() string
}

// AnalysisNotifier tells the analysis service about a new video.
type AnalysisNotifier interface {
	Notify(ctx context.Context, msg VideoAnalysisMessage) error
}

// AnalysisTrigger schedules a notification without waiting for it.
type AnalysisTrigger interface {
	Dispatch(msg VideoAnalysisMessage)
}
