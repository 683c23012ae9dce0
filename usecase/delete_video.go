// usecase/delete_video.go
package usecase

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/domain"
)

const msgFileNotFound = "File not found"

type DeleteVideoUseCase struct {
	VideoRepo   domain.VideoRepository
	FileStorage domain.FileStorageService
	Logger      hclog.Logger
}

func NewDeleteVideoUseCase(repo domain.VideoRepository, storage domain.FileStorageService, logger hclog.Logger) *DeleteVideoUseCase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DeleteVideoUseCase{VideoRepo: repo, FileStorage: storage, Logger: logger}
}

// Execute removes the stored file and then, best-effort, its metadata record.
// A missing file is NotFound; a record that cannot be removed is only logged.
func (uc *DeleteVideoUseCase) Execute(ctx context.Context, filename string) error {
	if !uc.DeleteVideo(filename) {
		return domain.NotFound(msgFileNotFound)
	}

	if uc.VideoRepo == nil {
		return nil
	}
	if err := uc.VideoRepo.DeleteByFilename(ctx, filename); err != nil && !errors.Is(err, domain.ErrVideoNotFound) {
		uc.Logger.Warn("file removed but metadata record remains", "filename", filename, "error", err)
	}
	return nil
}

// DeleteVideo reports whether a file was actually removed. It never fails.
func (uc *DeleteVideoUseCase) DeleteVideo(filename string) bool {
	deleted := uc.FileStorage.Delete(filename)
	uc.Logger.Debug("delete requested", "filename", filename, "deleted", deleted)
	return deleted
}
