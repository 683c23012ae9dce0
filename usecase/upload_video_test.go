package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vitovidale/video-upload-gateway/domain"
)

func TestUploadVideo_Success(t *testing.T) {
	repo, storage, trigger := newFakeRepo(), newFakeStorage(), &recordingTrigger{}
	uc := NewUploadVideoUseCase(repo, storage, trigger, nil)
	uc.newToken = func() string { return "3f1c" }
	uc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC) }

	content := []byte("0123456789")
	out, err := uc.Execute(context.Background(), upload("clip.mov", "video/quicktime", content))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !out.Success || out.Message != msgUploaded {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Filename != "3f1c.mov" {
		t.Fatalf("filename = %q", out.Filename)
	}
	if out.FileSize != 10 {
		t.Fatalf("fileSize = %d", out.FileSize)
	}
	if out.ID == "" {
		t.Fatal("empty id")
	}
	if out.UploadedAt != "2024-05-01T12:00:01Z" {
		t.Fatalf("uploadedAt = %q", out.UploadedAt)
	}
	if got := storage.files[out.Filename]; !bytes.Equal(got, content) {
		t.Fatalf("stored bytes = %q", got)
	}
	rec, err := repo.FindByID(context.Background(), out.ID)
	if err != nil || rec.Filename != out.Filename {
		t.Fatalf("record = %+v, %v", rec, err)
	}
	if len(trigger.msgs) != 1 || trigger.msgs[0].VideoID != out.ID || trigger.msgs[0].Filename != out.Filename {
		t.Fatalf("dispatched = %+v", trigger.msgs)
	}
}

func TestUploadVideo_GeneratedNamesAreUnique(t *testing.T) {
	repo, storage := newFakeRepo(), newFakeStorage()
	uc := NewUploadVideoUseCase(repo, storage, nil, nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		v, err := uc.StoreVideo(context.Background(), upload("same.mp4", "video/mp4", []byte("x")))
		if err != nil {
			t.Fatalf("StoreVideo: %v", err)
		}
		if seen[v.Filename] {
			t.Fatalf("duplicate filename %q", v.Filename)
		}
		if strings.ContainsAny(v.Filename, `/\`) || strings.Contains(v.Filename, "same") {
			t.Fatalf("filename leaks user input or separators: %q", v.Filename)
		}
		seen[v.Filename] = true
	}
	if repo.count() != 50 || len(storage.files) != 50 {
		t.Fatalf("repo=%d files=%d", repo.count(), len(storage.files))
	}
}

func TestUploadVideo_RejectsBeforeSideEffects(t *testing.T) {
	cases := []struct {
		name string
		file domain.UploadedFile
		msg  string
	}{
		{"empty", upload("clip.mp4", "video/mp4", nil), msgSelectVideo},
		{"pdf with video extension", upload("clip.mp4", "application/pdf", []byte("%PDF")), msgMustBeVideo},
		{"missing content type", upload("clip.mp4", "", []byte("x")), msgMustBeVideo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, storage, trigger := newFakeRepo(), newFakeStorage(), &recordingTrigger{}
			uc := NewUploadVideoUseCase(repo, storage, trigger, nil)

			_, err := uc.Execute(context.Background(), tc.file)
			var derr *domain.Error
			if !errors.As(err, &derr) || derr.Kind != domain.KindBadRequest || derr.Message != tc.msg {
				t.Fatalf("err = %v", err)
			}
			if len(storage.files) != 0 || repo.count() != 0 || len(trigger.msgs) != 0 {
				t.Fatal("validation failure had side effects")
			}
		})
	}
}

func TestUploadVideo_StorageFailureIsInternal(t *testing.T) {
	repo, storage := newFakeRepo(), newFakeStorage()
	storage.saveErr = errDisk
	uc := NewUploadVideoUseCase(repo, storage, nil, nil)

	_, err := uc.Execute(context.Background(), upload("a.mp4", "video/mp4", []byte("x")))
	if domain.KindOf(err) != domain.KindInternal || !errors.Is(err, errDisk) {
		t.Fatalf("err = %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("record created after failed write")
	}
}

func TestUploadVideo_StorageDomainErrorPassesThrough(t *testing.T) {
	repo, storage := newFakeRepo(), newFakeStorage()
	storage.saveErr = domain.Internal("Cannot store file outside storage root", nil)
	uc := NewUploadVideoUseCase(repo, storage, nil, nil)

	_, err := uc.Execute(context.Background(), upload("a.mp4", "video/mp4", []byte("x")))
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Message != "Cannot store file outside storage root" {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadVideo_RecordFailureRemovesFile(t *testing.T) {
	repo, storage, trigger := newFakeRepo(), newFakeStorage(), &recordingTrigger{}
	repo.saveErr = errors.New("connection reset")
	uc := NewUploadVideoUseCase(repo, storage, trigger, nil)

	_, err := uc.Execute(context.Background(), upload("a.mp4", "video/mp4", []byte("x")))
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("err = %v", err)
	}
	if len(storage.files) != 0 {
		t.Fatalf("orphaned files: %v", storage.files)
	}
	if len(trigger.msgs) != 0 {
		t.Fatal("notification sent for failed upload")
	}
}
