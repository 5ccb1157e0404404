package sweep

import (
	"bytes"
	"context"
	"testing"
	"time"

	"casemate-backend/internal/files"
	"casemate-backend/internal/shared/storage/object/local"
)

func TestRunDeletesOnlyUnreferencedBlobs(t *testing.T) {
	store := local.New(t.TempDir())
	fileRepo := files.NewMemoryRepo()

	referencedKey, _, _, err := store.Save(context.Background(), "case-1", "kept.pdf", bytes.NewReader([]byte("%PDF-1.4 kept")))
	if err != nil {
		t.Fatalf("save referenced blob: %v", err)
	}
	fe := files.FileEntry{
		ID:           "file-1",
		CaseID:       "case-1",
		UploadedBy:   "lawyer-1",
		StorageKey:   referencedKey,
		OriginalName: "kept.pdf",
		ContentType:  "application/pdf",
		UploadDate:   time.Now().UTC(),
	}
	if err := fileRepo.Create(context.Background(), fe); err != nil {
		t.Fatalf("create file entry: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, _, err := store.Save(context.Background(), "case-1", "orphan.pdf", bytes.NewReader([]byte("%PDF-1.4 orphan"))); err != nil {
			t.Fatalf("save orphan blob: %v", err)
		}
	}

	svc := NewService(store, fileRepo, time.Hour)
	deleted, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	keys, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(keys) != 1 || keys[0] != referencedKey {
		t.Fatalf("expected only the referenced blob, got %v", keys)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := local.New(t.TempDir())
	fileRepo := files.NewMemoryRepo()

	if _, _, _, err := store.Save(context.Background(), "case-1", "orphan.pdf", bytes.NewReader([]byte("%PDF-1.4"))); err != nil {
		t.Fatalf("save orphan blob: %v", err)
	}

	svc := NewService(store, fileRepo, time.Hour)
	if deleted, err := svc.Run(context.Background()); err != nil || deleted != 1 {
		t.Fatalf("first run: deleted=%d err=%v", deleted, err)
	}
	if deleted, err := svc.Run(context.Background()); err != nil || deleted != 0 {
		t.Fatalf("second run must be a no-op: deleted=%d err=%v", deleted, err)
	}
}

func TestRunEmptyStore(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(store, files.NewMemoryRepo(), time.Hour)
	deleted, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", deleted)
	}
}
