package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseOptions configures the Supabase Storage client.
type SupabaseOptions struct {
	ProjectURL     string
	ServiceKey     string
	Bucket         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// SupabaseStore talks to the Supabase Storage REST API. Objects live under
// bucket-relative keys of the form folder/filename.
type SupabaseStore struct {
	projectURL string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

type listEntry struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// NewSupabaseStore constructs a storage client for the given project bucket.
func NewSupabaseStore(opts SupabaseOptions) (*SupabaseStore, error) {
	projectURL := strings.TrimRight(strings.TrimSpace(opts.ProjectURL), "/")
	if projectURL == "" {
		return nil, errors.New("supabase: project url is required")
	}
	if strings.TrimSpace(opts.ServiceKey) == "" {
		return nil, errors.New("supabase: service key is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("supabase: bucket is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &SupabaseStore{
		projectURL: projectURL,
		serviceKey: strings.TrimSpace(opts.ServiceKey),
		bucket:     bucket,
		httpClient: httpClient,
	}, nil
}

// Upload stores data at the given bucket-relative path and returns the public
// URL of the object.
func (s *SupabaseStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", errors.New("supabase: object path is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.projectURL, s.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("supabase: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("supabase: upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return s.PublicURL(path), nil
}

// List enumerates the objects under a folder prefix.
func (s *SupabaseStore) List(ctx context.Context, folder string) ([]Entry, error) {
	payload, err := json.Marshal(listRequest{Prefix: strings.Trim(folder, "/"), Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("supabase: encode list request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", s.projectURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("supabase: build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: list: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read list response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase: list status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded []listEntry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("supabase: decode list response: %w", err)
	}
	entries := make([]Entry, 0, len(decoded))
	for _, item := range decoded {
		entries = append(entries, Entry{Name: item.Name, CreatedAt: item.CreatedAt})
	}
	return entries, nil
}

// Remove deletes one object from the bucket.
func (s *SupabaseStore) Remove(ctx context.Context, path string) error {
	payload, err := json.Marshal(removeRequest{Prefixes: []string{strings.TrimLeft(path, "/")}})
	if err != nil {
		return fmt.Errorf("supabase: encode remove request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", s.projectURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: build remove request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: remove: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase: remove status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// PublicURL returns the unauthenticated URL for an object in a public bucket.
func (s *SupabaseStore) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.projectURL, s.bucket, strings.TrimLeft(path, "/"))
}

var _ ObjectStore = (*SupabaseStore)(nil)
