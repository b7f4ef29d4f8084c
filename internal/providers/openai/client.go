package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adcraft/internal/infra"
)

// styleInstruction is the fixed vision prompt used to derive a style hint from
// a reference image.
const styleInstruction = "Describe the visual style of this ad image in a prompt-friendly sentence. Be concise."

// Options configures the OpenAI client.
type Options struct {
	APIKey         string
	Organization   string
	BaseURL        string
	ImageModel     string
	VisionModel    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the OpenAI images and chat-completions APIs.
type Client struct {
	apiKey       string
	organization string
	baseURL      string
	imageModel   string
	visionModel  string
	httpClient   *http.Client
	logger       *infra.Logger
}

// GenerateParams captures the inputs for a text-to-image call. Fields equal to
// their "auto" sentinel are omitted from the wire payload entirely; the API
// does not treat omission and an explicit "auto" as equivalent everywhere.
type GenerateParams struct {
	Prompt            string
	Size              string
	Background        string
	Quality           string
	OutputFormat      string
	OutputCompression *int
}

// EditParams captures the inputs for an image edit call. Images are ordered;
// a mask, when present, pairs with exactly one source image.
type EditParams struct {
	Prompt            string
	Images            [][]byte
	Mask              []byte
	Size              string
	Background        string
	Quality           string
	OutputCompression *int
}

type imageGenerationRequest struct {
	Model             string `json:"model"`
	Prompt            string `json:"prompt"`
	N                 int    `json:"n"`
	Size              string `json:"size,omitempty"`
	Background        string `json:"background,omitempty"`
	Quality           string `json:"quality,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
	OutputCompression *int   `json:"output_compression,omitempty"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}
	visionModel := strings.TrimSpace(opts.VisionModel)
	if visionModel == "" {
		visionModel = "gpt-4o"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		organization: strings.TrimSpace(opts.Organization),
		baseURL:      baseURL,
		imageModel:   imageModel,
		visionModel:  visionModel,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// DescribeStyle sends one vision request for the given inline image reference
// and returns the trimmed style sentence.
func (c *Client) DescribeStyle(ctx context.Context, imageDataURL string) (string, error) {
	payload := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: styleInstruction},
				{Type: "image_url", ImageURL: &imageURLPart{URL: imageDataURL}},
			},
		}},
	}
	raw, err := c.postJSON(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", &APIError{Kind: KindOther, Message: "vision response contained no choices"}
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", &APIError{Kind: KindOther, Message: "vision response was empty"}
	}
	return text, nil
}

// GenerateImage invokes the image generation endpoint once and returns the
// base64-encoded image payload.
func (c *Client) GenerateImage(ctx context.Context, p GenerateParams) (string, error) {
	payload := imageGenerationRequest{
		Model:             c.imageModel,
		Prompt:            p.Prompt,
		N:                 1,
		OutputCompression: p.OutputCompression,
	}
	if p.Size != "" && p.Size != "auto" {
		payload.Size = p.Size
	}
	if p.Background != "" && p.Background != "auto" {
		payload.Background = p.Background
	}
	if p.Quality != "" && p.Quality != "auto" {
		payload.Quality = p.Quality
	}
	if p.OutputFormat != "" {
		payload.OutputFormat = p.OutputFormat
	}

	raw, err := c.postJSON(ctx, "/images/generations", payload)
	if err != nil {
		return "", err
	}
	return decodeImagePayload(raw)
}

// EditImage invokes the image edit endpoint with one or more ordered source
// images and an optional mask, returning the base64-encoded result.
func (c *Client) EditImage(ctx context.Context, p EditParams) (string, error) {
	if len(p.Images) == 0 {
		return "", errors.New("openai: at least one source image is required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("model", c.imageModel)
	_ = mw.WriteField("prompt", p.Prompt)
	_ = mw.WriteField("n", "1")
	if p.Size != "" && p.Size != "auto" {
		_ = mw.WriteField("size", p.Size)
	}
	if p.Background != "" && p.Background != "auto" {
		_ = mw.WriteField("background", p.Background)
	}
	if p.Quality != "" && p.Quality != "auto" {
		_ = mw.WriteField("quality", p.Quality)
	}
	if p.OutputCompression != nil {
		_ = mw.WriteField("output_compression", strconv.Itoa(*p.OutputCompression))
	}
	for i, img := range p.Images {
		part, err := mw.CreateFormFile("image[]", fmt.Sprintf("image_%d.png", i))
		if err != nil {
			return "", fmt.Errorf("openai: build multipart: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return "", fmt.Errorf("openai: write image part: %w", err)
		}
	}
	if len(p.Mask) > 0 {
		part, err := mw.CreateFormFile("mask", "mask.png")
		if err != nil {
			return "", fmt.Errorf("openai: build multipart: %w", err)
		}
		if _, err := part.Write(p.Mask); err != nil {
			return "", fmt.Errorf("openai: write mask part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai: finalize multipart: %w", err)
	}

	raw, err := c.post(ctx, "/images/edits", mw.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	return decodeImagePayload(raw)
}

func decodeImagePayload(raw []byte) (string, error) {
	var decoded imageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].B64JSON == "" {
		return "", &APIError{Kind: KindOther, Message: "image response contained no data"}
	}
	return decoded.Data[0].B64JSON, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	return c.post(ctx, path, "application/json", bytes.NewReader(body))
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(raw))
		var detail errorEnvelope
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			message = detail.Error.Message
		}
		apiErr := classify(resp.StatusCode, message)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("openai: request failed")
		return nil, apiErr
	}
	return raw, nil
}
