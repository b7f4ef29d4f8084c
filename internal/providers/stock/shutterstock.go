package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("shutterstock: api key is required")

// Options configures the Shutterstock search client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client performs read-only searches against the Shutterstock images API. It
// exists to feed the inspiration gallery; generation never depends on it.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Image is the trimmed-down view of a stock search result.
type Image struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	PreviewURL   string   `json:"preview_url"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Categories   []string `json:"categories"`
}

type searchResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Assets      struct {
			Preview struct {
				URL string `json:"url"`
			} `json:"preview"`
			LargeThumb struct {
				URL string `json:"url"`
			} `json:"large_thumb"`
		} `json:"assets"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"data"`
}

// NewClient constructs a search client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.shutterstock.com/v2"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// SearchByCategory returns popular stock images matching the given category.
func (c *Client) SearchByCategory(ctx context.Context, category string, perPage int) ([]Image, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if perPage <= 0 {
		perPage = 20
	}

	query := url.Values{}
	query.Set("query", category)
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("sort", "popular")
	query.Set("view", "full")

	endpoint := c.baseURL + "/images/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("shutterstock: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shutterstock: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("shutterstock: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("shutterstock: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("shutterstock: decode response: %w", err)
	}

	images := make([]Image, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		img := Image{
			ID:           item.ID,
			Description:  item.Description,
			PreviewURL:   item.Assets.Preview.URL,
			ThumbnailURL: item.Assets.LargeThumb.URL,
		}
		for _, cat := range item.Categories {
			if name := strings.TrimSpace(cat.Name); name != "" {
				img.Categories = append(img.Categories, name)
			}
		}
		images = append(images, img)
	}
	return images, nil
}
