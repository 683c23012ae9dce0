// domain/video.go
package domain

import (
	"io"
	"time"
)

// StoredVideo is the metadata record kept for every file written under the
// storage root. ID is assigned by the metadata store.
type StoredVideo struct {
	ID        string
	Filename  string
	CreatedAt time.Time
}

// UploadedFile is an inbound upload as seen by the use cases, independent of
// the transport that received it.
type UploadedFile struct {
	OriginalFilename string
	ContentType      string
	Size             int64
	Content          io.Reader
}

// VideoAnalysisMessage is what the analysis service is told about a new video.
type VideoAnalysisMessage struct {
	VideoID   string    `json:"video_id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}
