package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()

	key, err := store.Put(ctx, "dfsa/generations/job-1/output.mp4", []byte("video"), "video/mp4")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if key != "dfsa/generations/job-1/output.mp4" {
		t.Errorf("canonical key = %q", key)
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "video" {
		t.Errorf("data = %q", data)
	}

	info, err := store.Head(ctx, key)
	if err != nil {
		t.Fatalf("Head returned error: %v", err)
	}
	if info.Size != int64(len("video")) {
		t.Errorf("size = %d", info.Size)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "dfsa/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := store.Head(ctx, "dfsa/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreListPrefix(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{
		"dfsa/generations/job-1/metadata.json",
		"dfsa/generations/job-1/output.mp4",
		"atlas/generations/job-2/metadata.json",
	} {
		if _, err := store.Put(ctx, key, []byte("x"), ""); err != nil {
			t.Fatalf("Put(%q) returned error: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "dfsa/generations")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List returned %d keys, want 2: %v", len(keys), keys)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, "dfsa/generations/") {
			t.Errorf("key %q escaped the prefix", key)
		}
	}

	empty, err := store.List(ctx, "yourbud/generations")
	if err != nil {
		t.Fatalf("List of empty prefix returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List of empty prefix = %v", empty)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if _, err := store.Put(context.Background(), "../outside.txt", []byte("x"), ""); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}
