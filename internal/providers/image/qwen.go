package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// QwenOptions configures the DashScope Qwen text-to-image client.
type QwenOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// Qwen performs HTTP calls to the DashScope multimodal generation API. The
// API returns a URL per image which is downloaded before returning.
type Qwen struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     infra.Logger
}

func NewQwen(opts QwenOptions) (*Qwen, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("qwen: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "qwen-image"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &Qwen{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

type qwenRequest struct {
	Model      string     `json:"model"`
	Input      qwenInput  `json:"input"`
	Parameters qwenParams `json:"parameters"`
}

type qwenInput struct {
	Messages []qwenMessage `json:"messages"`
}

type qwenMessage struct {
	Role    string        `json:"role"`
	Content []qwenContent `json:"content"`
}

type qwenContent struct {
	Text string `json:"text,omitempty"`
}

type qwenParams struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Size           string `json:"size,omitempty"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []struct {
					Image string `json:"image"`
				} `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Usage struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"usage"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Aspect ratios map to the discrete sizes DashScope accepts.
var qwenSizes = map[string]string{
	"1:1":  "1328*1328",
	"16:9": "1664*928",
	"9:16": "928*1664",
	"4:3":  "1472*1140",
	"3:4":  "1140*1472",
}

func (q *Qwen) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	payload := qwenRequest{
		Model: q.model,
		Input: qwenInput{
			Messages: []qwenMessage{{
				Role:    "user",
				Content: []qwenContent{{Text: req.Prompt}},
			}},
		},
		Parameters: qwenParams{
			NegativePrompt: strings.TrimSpace(req.NegativePrompt),
			Size:           qwenSize(req.AspectRatio),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Asset{}, fmt.Errorf("qwen: encode request: %w", err)
	}
	endpoint := q.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Asset{}, fmt.Errorf("qwen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+q.apiKey)

	resp, err := q.httpClient.Do(httpReq)
	if err != nil {
		return Asset{}, fmt.Errorf("qwen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("qwen: read response: %w", err)
	}
	var decoded qwenResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Asset{}, fmt.Errorf("qwen: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || decoded.Code != "" {
		if decoded.Message != "" {
			return Asset{}, fmt.Errorf("qwen: %s (%s)", decoded.Message, decoded.Code)
		}
		return Asset{}, fmt.Errorf("qwen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	imageURL := firstQwenImage(decoded)
	if imageURL == "" {
		return Asset{}, errors.New("qwen: empty image url")
	}
	data, mime, err := q.download(ctx, imageURL)
	if err != nil {
		return Asset{}, err
	}

	asset := Asset{Data: data, MIME: mime, Width: decoded.Usage.Width, Height: decoded.Usage.Height}
	if asset.Width == 0 || asset.Height == 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			asset.Width, asset.Height = cfg.Width, cfg.Height
		}
	}
	q.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", q.model).
		Int("bytes", len(data)).
		Msg("qwen: image generated")
	return asset, nil
}

func (q *Qwen) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("qwen: build download request: %w", err)
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("qwen: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("qwen: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("qwen: read image: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}

func firstQwenImage(resp qwenResponse) string {
	for _, choice := range resp.Output.Choices {
		for _, content := range choice.Message.Content {
			if content.Image != "" {
				return content.Image
			}
		}
	}
	return ""
}

func qwenSize(aspectRatio string) string {
	if size, ok := qwenSizes[aspectRatio]; ok {
		return size
	}
	return qwenSizes["1:1"]
}

var _ Generator = (*Qwen)(nil)
