// usecase/get_video.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/vitovidale/video-upload-gateway/domain"
)

type VideoOutput struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"createdAt"`
}

type GetVideoUseCase struct {
	VideoRepo domain.VideoRepository
}

func NewGetVideoUseCase(repo domain.VideoRepository) *GetVideoUseCase {
	return &GetVideoUseCase{VideoRepo: repo}
}

func (uc *GetVideoUseCase) Execute(ctx context.Context, id string) (*VideoOutput, error) {
	video, err := uc.VideoRepo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrVideoNotFound) {
		return nil, domain.NotFound("Video not found")
	}
	if err != nil {
		return nil, domain.Internal("Failed to read video metadata", err)
	}
	return &VideoOutput{
		Success:   true,
		ID:        video.ID,
		Filename:  video.Filename,
		CreatedAt: video.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
