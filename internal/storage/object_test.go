package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestObjectStore(t *testing.T, rt roundTripFunc) *ObjectStore {
	t.Helper()
	store, err := NewObjectStore(ObjectStoreOptions{
		BaseURL:    "https://project.example",
		ServiceKey: "service-key",
		Bucket:     "generations",
		Logger:     zerolog.Nop(),
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewObjectStore returned error: %v", err)
	}
	return store
}

func TestObjectStorePut(t *testing.T) {
	store := newTestObjectStore(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/storage/v1/object/generations/dfsa/generations/job-1/output.mp4" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer service-key" {
			t.Errorf("missing service key")
		}
		if r.Header.Get("x-upsert") != "true" {
			t.Errorf("missing upsert header")
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
	})

	key, err := store.Put(context.Background(), "dfsa/generations/job-1/output.mp4", []byte("v"), "video/mp4")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if key != "dfsa/generations/job-1/output.mp4" {
		t.Errorf("key = %q", key)
	}
}

func TestObjectStoreGetNotFound(t *testing.T) {
	store := newTestObjectStore(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(`{"error":"not_found"}`))}, nil
	})
	if _, err := store.Get(context.Background(), "dfsa/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestObjectStorePresign(t *testing.T) {
	store := newTestObjectStore(t, func(r *http.Request) (*http.Response, error) {
		if !strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/generations/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		body := `{"signedURL":"/object/sign/generations/dfsa/generations/job-1/output.mp4?token=abc"}`
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
	})
	signed, err := store.Presign(context.Background(), "dfsa/generations/job-1/output.mp4", 0)
	if err != nil {
		t.Fatalf("Presign returned error: %v", err)
	}
	if !strings.HasPrefix(signed, "https://project.example/storage/v1/") {
		t.Errorf("signed url = %q", signed)
	}
	if !strings.Contains(signed, "token=abc") {
		t.Errorf("signed url missing token: %q", signed)
	}
}
