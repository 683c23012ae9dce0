// infrastructure/memory_video_repository.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitovidale/video-upload-gateway/domain"
)

// MemoryVideoRepository keeps records in process memory. Records do not
// survive a restart.
type MemoryVideoRepository struct {
	mu     sync.RWMutex
	videos map[string]domain.StoredVideo
	now    func() time.Time
}

var _ domain.VideoRepository = (*MemoryVideoRepository)(nil)

func NewMemoryVideoRepository() *MemoryVideoRepository {
	return &MemoryVideoRepository{
		videos: make(map[string]domain.StoredVideo),
		now:    time.Now,
	}
}

func (r *MemoryVideoRepository) Save(_ context.Context, video *domain.StoredVideo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video.ID = uuid.NewString()
	video.CreatedAt = r.now().UTC()
	r.videos[video.ID] = *video
	return nil
}

func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (*domain.StoredVideo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return &v, nil
}

func (r *MemoryVideoRepository) DeleteByFilename(_ context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, v := range r.videos {
		if v.Filename == filename {
			delete(r.videos, id)
			removed++
		}
	}
	if removed == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

// Len returns the number of stored records.
func (r *MemoryVideoRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.videos)
}

func (r *MemoryVideoRepository) Ping(context.Context) error  { return nil }
func (r *MemoryVideoRepository) Close(context.Context) error { return nil }
