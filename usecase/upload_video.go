// usecase/upload_video.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/domain"
)

const (
	msgSelectVideo  = "Please select a video file to upload"
	msgMustBeVideo  = "File must be a video (mp4, mov, avi, etc.)"
	msgUploaded     = "Video uploaded successfully"
	msgStoreFailed  = "Failed to store file"
	msgRecordFailed = "Failed to save video metadata"
)

// UploadVideoOutput is the success body of an upload.
type UploadVideoOutput struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"fileSize"`
	UploadedAt string `json:"uploadedAt"`
}

type UploadVideoUseCase struct {
	VideoRepo   domain.VideoRepository
	FileStorage domain.FileStorageService
	// Analysis may be nil, in which case no notification is sent.
	Analysis domain.AnalysisTrigger
	Logger   hclog.Logger

	now      func() time.Time
	newToken func() string
}

func NewUploadVideoUseCase(repo domain.VideoRepository, storage domain.FileStorageService, analysis domain.AnalysisTrigger, logger hclog.Logger) *UploadVideoUseCase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &UploadVideoUseCase{
		VideoRepo:   repo,
		FileStorage: storage,
		Analysis:    analysis,
		Logger:      logger,
		now:         time.Now,
		newToken:    uuid.NewString,
	}
}

// Execute stores the upload, then builds the response and dispatches the
// analysis notification. The notification is never awaited.
func (uc *UploadVideoUseCase) Execute(ctx context.Context, file domain.UploadedFile) (*UploadVideoOutput, error) {
	video, err := uc.StoreVideo(ctx, file)
	if err != nil {
		return nil, err
	}

	if uc.Analysis != nil {
		uc.Analysis.Dispatch(domain.VideoAnalysisMessage{
			VideoID:   video.ID,
			Filename:  video.Filename,
			CreatedAt: video.CreatedAt,
		})
	}

	return &UploadVideoOutput{
		Success:    true,
		Message:    msgUploaded,
		ID:         video.ID,
		Filename:   video.Filename,
		FileSize:   file.Size,
		UploadedAt: uc.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// StoreVideo validates the upload, writes it under a freshly generated name and
// records it. The record is only created once the file write has succeeded.
func (uc *UploadVideoUseCase) StoreVideo(ctx context.Context, file domain.UploadedFile) (*domain.StoredVideo, error) {
	if file.Size <= 0 || file.Content == nil {
		return nil, domain.BadRequest(msgSelectVideo)
	}
	if !IsVideoContentType(file.ContentType) {
		return nil, domain.BadRequest(msgMustBeVideo)
	}

	filename := uc.newToken() + "." + videoExtension(file.OriginalFilename)
	log := uc.Logger.With("filename", filename)

	if err := uc.FileStorage.Save(file.Content, filename); err != nil {
		log.Error("failed to write video file", "error", err)
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.Internal(msgStoreFailed, err)
	}

	video := &domain.StoredVideo{Filename: filename}
	if err := uc.VideoRepo.Save(ctx, video); err != nil {
		log.Error("failed to record video, removing file", "error", err)
		if !uc.FileStorage.Delete(filename) {
			log.Warn("could not remove file after failed record")
		}
		return nil, domain.Internal(msgRecordFailed, err)
	}

	log.Info("video stored", "video_id", video.ID, "size", file.Size)
	return video, nil
}
