package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/vitovidale/video-upload-gateway/domain"
)

type fakeRepo struct {
	mu       sync.Mutex
	videos   map[string]domain.StoredVideo
	saveErr  error
	deleteFn func(filename string) error
	seq      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[string]domain.StoredVideo{}}
}

func (r *fakeRepo) Save(_ context.Context, v *domain.StoredVideo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.seq++
	v.ID = "id-" + strconv.Itoa(r.seq)
	v.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.videos[v.ID] = *v
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.StoredVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return &v, nil
}

func (r *fakeRepo) DeleteByFilename(_ context.Context, filename string) error {
	if r.deleteFn != nil {
		return r.deleteFn(filename)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.videos {
		if v.Filename == filename {
			delete(r.videos, id)
			return nil
		}
	}
	return domain.ErrVideoNotFound
}

func (r *fakeRepo) Ping(context.Context) error  { return nil }
func (r *fakeRepo) Close(context.Context) error { return nil }

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.videos)
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (s *fakeStorage) Save(src io.Reader, filename string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = b
	return nil
}

func (s *fakeStorage) Delete(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[filename]; !ok {
		return false
	}
	delete(s.files, filename)
	return true
}

func (s *fakeStorage) Root() string { return "/fake" }

type recordingTrigger struct {
	mu   sync.Mutex
	msgs []domain.VideoAnalysisMessage
}

func (t *recordingTrigger) Dispatch(msg domain.VideoAnalysisMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msg)
}

func upload(name, contentType string, content []byte) domain.UploadedFile {
	return domain.UploadedFile{
		OriginalFilename: name,
		ContentType:      contentType,
		Size:             int64(len(content)),
		Content:          bytes.NewReader(content),
	}
}

var errDisk = errors.New("disk full")
