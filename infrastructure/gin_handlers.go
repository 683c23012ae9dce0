// infrastructure/gin_handlers.go
package infrastructure

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/domain"
	"github.com/vitovidale/video-upload-gateway/usecase"
)

const (
	msgSelectVideo   = "Please select a video file to upload"
	msgTooLarge      = "File exceeds the maximum upload size"
	msgInternalError = "Internal server error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VideoHandlers struct {
	UploadVideoUC *usecase.UploadVideoUseCase
	DeleteVideoUC *usecase.DeleteVideoUseCase
	GetVideoUC    *usecase.GetVideoUseCase
	Metrics       *Metrics
	Logger        hclog.Logger
}

func NewVideoHandlers(uploadUC *usecase.UploadVideoUseCase, deleteUC *usecase.DeleteVideoUseCase, getUC *usecase.GetVideoUseCase, metrics *Metrics, logger hclog.Logger) *VideoHandlers {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &VideoHandlers{
		UploadVideoUC: uploadUC,
		DeleteVideoUC: deleteUC,
		GetVideoUC:    getUC,
		Metrics:       metrics,
		Logger:        logger,
	}
}

func (h *VideoHandlers) UploadVideoHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		msg := msgSelectVideo
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = msgTooLarge
		}
		h.Logger.Debug("no usable video part in upload", "error", err)
		h.fail(c, domain.BadRequest(msg), h.Metrics.ObserveUpload)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, domain.Internal("Failed to open uploaded file", err), h.Metrics.ObserveUpload)
		return
	}
	defer file.Close()

	input := domain.UploadedFile{
		OriginalFilename: fileHeader.Filename,
		ContentType:      fileHeader.Header.Get("Content-Type"),
		Size:             fileHeader.Size,
		Content:          file,
	}

	output, err := h.UploadVideoUC.Execute(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err, h.Metrics.ObserveUpload)
		return
	}
	h.Metrics.ObserveUpload(OutcomeOK, output.FileSize)
	c.JSON(http.StatusOK, output)
}

func (h *VideoHandlers) DeleteVideoHandler(c *gin.Context) {
	if err := h.DeleteVideoUC.Execute(c.Request.Context(), c.Param("filename")); err != nil {
		h.fail(c, err, func(outcome string, _ int64) { h.Metrics.ObserveDelete(outcome) })
		return
	}
	h.Metrics.ObserveDelete(OutcomeOK)
	c.Status(http.StatusNoContent)
}

func (h *VideoHandlers) GetVideoHandler(c *gin.Context) {
	output, err := h.GetVideoUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *VideoHandlers) fail(c *gin.Context, err error, observe func(outcome string, size int64)) {
	status, body := h.errorResponse(c, err)
	if observe != nil {
		observe(outcomeFor(status), 0)
	}
	c.JSON(status, body)
}

// errorResponse maps err onto a status and a body that is safe to show. Causes
// of internal errors are logged here and never leave the process.
func (h *VideoHandlers) errorResponse(c *gin.Context, err error) (int, ErrorResponse) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.Logger.Error("unhandled error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		return http.StatusInternalServerError, ErrorResponse{Message: msgInternalError}
	}

	switch derr.Kind {
	case domain.KindBadRequest:
		return http.StatusBadRequest, ErrorResponse{Message: derr.Message}
	case domain.KindNotFound:
		return http.StatusNotFound, ErrorResponse{Message: derr.Message}
	default:
		h.Logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		return http.StatusInternalServerError, ErrorResponse{Message: derr.Message}
	}
}

func outcomeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return OutcomeBadRequest
	case http.StatusNotFound:
		return OutcomeNotFound
	default:
		return OutcomeServerError
	}
}
