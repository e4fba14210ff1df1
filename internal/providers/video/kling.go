package video

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// KlingOptions configures the Kling client.
type KlingOptions struct {
	AccessKey  string
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// Kling drives the Kling AI video API. The API is task based: create a task,
// then query its status until it reports succeed or failed. Authentication is
// a short-lived HMAC-SHA256 JWT minted per request.
type Kling struct {
	accessKey  string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     infra.Logger
}

func NewKling(opts KlingOptions) (*Kling, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("kling: access and secret keys are required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.klingai.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Kling{
		accessKey:  opts.AccessKey,
		secretKey:  opts.SecretKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

type klingCreateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Image     string `json:"image,omitempty"`
	Duration  int    `json:"duration"`
	Negative  string `json:"negative_prompt,omitempty"`
	AspectRat string `json:"aspect_ratio,omitempty"`
}

type klingTaskEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		TaskMsg    string `json:"task_status_msg"`
		TaskResult struct {
			Videos []struct {
				URL string `json:"url"`
			} `json:"videos"`
		} `json:"task_result"`
	} `json:"data"`
}

func (k *Kling) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	payload := klingCreateRequest{
		Model:     "kling-v1",
		Prompt:    req.Prompt,
		Duration:  req.DurationSeconds,
		Negative:  req.NegativePrompt,
		AspectRat: req.AspectRatio,
	}
	if req.Reference != nil {
		payload.Image = base64.StdEncoding.EncodeToString(req.Reference.Data)
	}

	var envelope klingTaskEnvelope
	if err := k.call(ctx, http.MethodPost, "/v1/videos/image2video", payload, &envelope); err != nil {
		return "", err
	}
	if envelope.Code != 0 {
		return "", fmt.Errorf("kling: api error %d: %s", envelope.Code, envelope.Message)
	}
	k.logger.Info().
		Str("request_id", req.RequestID).
		Str("task_id", envelope.Data.TaskID).
		Msg("kling: task created")
	return envelope.Data.TaskID, nil
}

func (k *Kling) Poll(ctx context.Context, handle string) (PollStatus, error) {
	var envelope klingTaskEnvelope
	if err := k.call(ctx, http.MethodGet, "/v1/videos/image2video/"+handle, nil, &envelope); err != nil {
		return PollStatus{}, err
	}
	if envelope.Code != 0 {
		return PollStatus{}, fmt.Errorf("kling: api error %d: %s", envelope.Code, envelope.Message)
	}
	switch envelope.Data.TaskStatus {
	case "succeed":
		if len(envelope.Data.TaskResult.Videos) == 0 {
			return PollStatus{Done: true, Failed: true, Message: "task succeeded without videos"}, nil
		}
		return PollStatus{Done: true, ResultRef: envelope.Data.TaskResult.Videos[0].URL}, nil
	case "failed":
		msg := envelope.Data.TaskMsg
		if msg == "" {
			msg = "task failed"
		}
		return PollStatus{Done: true, Failed: true, Message: msg}, nil
	default:
		return PollStatus{}, nil
	}
}

func (k *Kling) Fetch(ctx context.Context, resultRef string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultRef, nil)
	if err != nil {
		return nil, fmt.Errorf("kling: build download request: %w", err)
	}
	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kling: download video: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kling: download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (k *Kling) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("kling: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, k.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("kling: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+k.mintJWT())

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kling: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kling: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kling: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("kling: decode response: %w", err)
	}
	return nil
}

// mintJWT builds the HS256 token the Kling API expects: issuer is the access
// key, 30 minute validity, signed with the secret key.
func (k *Kling) mintJWT() string {
	encode := func(v any) string {
		raw, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	now := time.Now().Unix()
	header := encode(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := encode(map[string]any{
		"iss": k.accessKey,
		"exp": now + 1800,
		"nbf": now - 5,
	})
	unsigned := header + "." + claims
	mac := hmac.New(sha256.New, []byte(k.secretKey))
	mac.Write([]byte(unsigned))
	return unsigned + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

var _ Generator = (*Kling)(nil)
