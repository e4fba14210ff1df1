package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// ObjectStoreOptions configures the hosted object storage client.
type ObjectStoreOptions struct {
	// BaseURL is the project root, e.g. https://xyz.supabase.co.
	BaseURL string
	// ServiceKey authenticates server-side calls.
	ServiceKey string
	// Bucket holds all generation artifacts.
	Bucket     string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// ObjectStore talks to a Supabase-compatible storage API over HTTP. All calls
// carry the service key, so this client must never run in a browser context.
type ObjectStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	logger     infra.Logger
}

func NewObjectStore(opts ObjectStoreOptions) (*ObjectStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("storage: object store url is required")
	}
	if strings.TrimSpace(opts.ServiceKey) == "" {
		return nil, errors.New("storage: service key is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		bucket = "generations"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ObjectStore{
		baseURL:    baseURL,
		serviceKey: strings.TrimSpace(opts.ServiceKey),
		bucket:     bucket,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, escapeKey(cleanKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("storage: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	// Same-key uploads overwrite; job retries reuse their artifact keys.
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", s.apiError("upload", resp)
	}
	s.logger.Debug().Str("key", cleanKey).Int("bytes", len(data)).Msg("storage: object uploaded")
	return cleanKey, nil
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, escapeKey(cleanKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError("download", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read download: %w", err)
	}
	return data, nil
}

func (s *ObjectStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/info/%s/%s", s.baseURL, s.bucket, escapeKey(cleanKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: build info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: object info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ObjectInfo{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return ObjectInfo{}, s.apiError("info", resp)
	}
	var decoded struct {
		Size        int64     `json:"size"`
		ContentType string    `json:"contentType"`
		LastModifed time.Time `json:"lastModified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: decode info: %w", err)
	}
	return ObjectInfo{
		Key:          cleanKey,
		Size:         decoded.Size,
		ContentType:  decoded.ContentType,
		LastModified: decoded.LastModifed,
	}, nil
}

func (s *ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	cleanPrefix, err := sanitizeKey(prefix)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"prefix": cleanPrefix,
		"limit":  1000,
		"sortBy": map[string]string{"column": "name", "order": "asc"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("storage: encode list request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", s.baseURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storage: build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError("list", resp)
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("storage: decode list: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		keys = append(keys, cleanPrefix+"/"+entry.Name)
	}
	return keys, nil
}

func (s *ObjectStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	payload := map[string]any{"expiresIn": int(ttl.Seconds())}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("storage: encode sign request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, escapeKey(cleanKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("storage: build sign request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: sign: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", s.apiError("sign", resp)
	}
	var decoded struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("storage: decode sign: %w", err)
	}
	if decoded.SignedURL == "" {
		return "", errors.New("storage: empty signed url")
	}
	if strings.HasPrefix(decoded.SignedURL, "http") {
		return decoded.SignedURL, nil
	}
	return s.baseURL + "/storage/v1" + decoded.SignedURL, nil
}

func (s *ObjectStore) apiError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("storage: %s status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))
}

// escapeKey escapes each path segment while keeping the separators.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

var _ Store = (*ObjectStore)(nil)
