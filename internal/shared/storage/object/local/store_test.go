package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("body "), 200)...)

	key, size, mime, err := store.Save(context.Background(), "case-1", "petition.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}
	if mime != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mime)
	}
	if !strings.HasSuffix(key, "_petition.pdf") {
		t.Fatalf("expected key to keep the file name, got %q", key)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stored bytes differ from original")
	}
}

func TestSaveRejectsTraversalNames(t *testing.T) {
	store := New(t.TempDir())
	if _, _, _, err := store.Save(context.Background(), "case-1", "../escape.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := New(t.TempDir())
	key, _, _, err := store.Save(context.Background(), "case-1", "a.pdf", strings.NewReader("%PDF-1.4 data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Second delete of the same key is swallowed.
	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}

	if _, err := store.Open(context.Background(), key); err == nil {
		t.Fatalf("expected Open after delete to fail")
	}
}

func TestDeleteRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Delete(context.Background(), "../outside"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestListReturnsAllKeys(t *testing.T) {
	store := New(t.TempDir())

	keys := map[string]bool{}
	for _, name := range []string{"a.pdf", "b.pdf"} {
		key, _, _, err := store.Save(context.Background(), "case-1", name, strings.NewReader("%PDF-1.4 data"))
		if err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
		keys[key] = false
	}
	otherKey, _, _, err := store.Save(context.Background(), "case-2", "c.pdf", strings.NewReader("%PDF-1.4 data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	keys[otherKey] = false

	listed, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(listed))
	}
	for _, k := range listed {
		if _, ok := keys[k]; !ok {
			t.Fatalf("unexpected key %q", k)
		}
		keys[k] = true
	}
	for k, seen := range keys {
		if !seen {
			t.Fatalf("key %q missing from listing", k)
		}
	}
}

func TestListEmptyStore(t *testing.T) {
	store := New(t.TempDir())
	listed, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing, got %v", listed)
	}
}
