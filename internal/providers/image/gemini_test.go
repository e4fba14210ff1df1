package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
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

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGeminiGenerateDecodesInlineData(t *testing.T) {
	payload := []byte("fake-png-bytes")
	response := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{
					{"text": "here is your image"},
					{"inlineData": map[string]any{
						"mimeType": "image/png",
						"data":     base64.StdEncoding.EncodeToString(payload),
					}},
				},
			},
		}},
	}
	raw, _ := json.Marshal(response)

	var gotPath string
	client, err := NewGemini(GeminiOptions{
		APIKey: "key",
		Logger: zerolog.Nop(),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotPath = r.URL.Path
			if r.Header.Get("x-goog-api-key") != "key" {
				t.Errorf("missing api key header")
			}
			return jsonResponse(http.StatusOK, string(raw)), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGemini returned error: %v", err)
	}

	asset, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a bowl of dried mango", RequestID: "r1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if string(asset.Data) != string(payload) {
		t.Errorf("asset data mismatch")
	}
	if asset.MIME != "image/png" {
		t.Errorf("MIME = %q", asset.MIME)
	}
	if !strings.Contains(gotPath, ":generateContent") {
		t.Errorf("unexpected endpoint path %q", gotPath)
	}
}

func TestGeminiGenerateSurfacesAPIError(t *testing.T) {
	client, err := NewGemini(GeminiOptions{
		APIKey: "key",
		Logger: zerolog.Nop(),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"RESOURCE_EXHAUSTED: quota"}}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGemini returned error: %v", err)
	}
	_, err = client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Fatalf("error = %v, want quota message", err)
	}
}

func TestGeminiGenerateNoImageData(t *testing.T) {
	client, err := NewGemini(GeminiOptions{
		APIKey: "key",
		Logger: zerolog.Nop(),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"no image"}]}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGemini returned error: %v", err)
	}
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error when response has no inline data")
	}
}
